package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lessonlab/internal/audio"
	"lessonlab/internal/validation"
)

// SpeechHandler proxies speech synthesis for the spelling UI
type SpeechHandler struct {
	speechService *audio.SpeechService
	callTimeout   time.Duration
}

// NewSpeechHandler creates a new speech handler
func NewSpeechHandler(speechService *audio.SpeechService, callTimeout time.Duration) *SpeechHandler {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &SpeechHandler{speechService: speechService, callTimeout: callTimeout}
}

type speechRequest struct {
	Text string `json:"text"`
}

// Synthesize returns base64 MP3 audio for the requested text
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateSpeechText(req.Text); err != nil {
		respondWithServiceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.callTimeout)
	defer cancel()

	result, err := h.speechService.Synthesize(ctx, req.Text)
	if err != nil {
		if errors.Is(err, audio.ErrServiceUnavailable) {
			respondWithError(w, http.StatusServiceUnavailable, ErrSpeechUnavailable, "", nil)
			return
		}
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
