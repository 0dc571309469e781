package audio

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ContentType is the MIME type of every synthesized clip
const ContentType = "audio/mpeg"

const (
	defaultRequestTimeout = 10 * time.Second
	// A spoken word or short sentence is a few KB; anything past this is not a clip
	defaultMaxClipBytes = 2 << 20
)

var (
	// ErrServiceUnavailable is returned for any upstream failure; callers see a generic message
	ErrServiceUnavailable = errors.New("speech service unavailable")
	// ErrEmptyText is returned when there is nothing to say
	ErrEmptyText = errors.New("text is required")
)

// SpeechResult is the payload returned to the client
type SpeechResult struct {
	AudioContent string `json:"audioContent"`
	ContentType  string `json:"contentType"`
}

// SpeechService proxies text-to-speech requests to an upstream endpoint
// and keeps the returned MP3s on disk
type SpeechService struct {
	baseURL  string
	language string
	cacheDir string
	client   *http.Client
	debug    bool
	maxClip  int64
}

// NewSpeechService creates a new speech service. An empty cacheDir disables caching.
func NewSpeechService(baseURL, language, cacheDir string, timeout time.Duration, debug bool) *SpeechService {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &SpeechService{
		baseURL:  baseURL,
		language: language,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: timeout},
		debug:    debug,
		maxClip:  defaultMaxClipBytes,
	}
}

// Synthesize returns base64-encoded MP3 audio for text. The upstream is tried
// once; there are no retries.
func (s *SpeechService) Synthesize(ctx context.Context, text string) (*SpeechResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	cachePath := s.cachePath(text)
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			if s.debug {
				log.Printf("[DEBUG] Speech cache hit: %s", filepath.Base(cachePath))
			}
			return newSpeechResult(data), nil
		}
	}

	data, err := s.fetch(ctx, text)
	if err != nil {
		log.Printf("Warning: speech synthesis failed: %v", err)
		return nil, ErrServiceUnavailable
	}

	if cachePath != "" {
		if err := s.store(cachePath, data); err != nil {
			log.Printf("Warning: failed to cache speech audio: %v", err)
		}
	}

	return newSpeechResult(data), nil
}

func newSpeechResult(data []byte) *SpeechResult {
	return &SpeechResult{
		AudioContent: base64.StdEncoding.EncodeToString(data),
		ContentType:  ContentType,
	}
}

// cachePath names the cache file by a hash of language and text, so any text is a safe filename
func (s *SpeechService) cachePath(text string) string {
	if s.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.language + "|" + strings.ToLower(text)))
	return filepath.Join(s.cacheDir, "speech_"+hex.EncodeToString(sum[:8])+".mp3")
}

func (s *SpeechService) fetch(ctx context.Context, text string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent (required by Google)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxClip+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if int64(len(data)) > s.maxClip {
		return nil, fmt.Errorf("audio response exceeds %d bytes", s.maxClip)
	}
	if len(data) == 0 {
		return nil, errors.New("empty audio response")
	}
	return data, nil
}

// store writes through a temp file so a concurrent reader never sees a partial clip
func (s *SpeechService) store(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "speech-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ClearCache removes every cached clip and reports how many were deleted
func (s *SpeechService) ClearCache() (int, error) {
	if s.cacheDir == "" {
		return 0, nil
	}
	files, err := os.ReadDir(s.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read audio directory: %w", err)
	}
	removed := 0
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".mp3" {
			if err := os.Remove(filepath.Join(s.cacheDir, file.Name())); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
