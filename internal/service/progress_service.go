package service

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"lessonlab/internal/models"
	"lessonlab/internal/validation"
)

// ProgressService owns the live session and the cumulative ProgressData.
// Every mutation returns the resulting state and persists it under ProgressKey.
// The stored record is re-read before each use, so changes made by another
// process sharing the store (labctl clear, backup import) are not overwritten.
type ProgressService struct {
	mu       sync.Mutex
	store    KeyValueStore
	data     *models.ProgressData
	recorder *SessionRecorder
	now      func() time.Time

	// unsaved is set while a write has failed; memory is then ahead of the store
	unsaved bool
}

// NewProgressService loads persisted progress from store, starting empty when none exists
func NewProgressService(store KeyValueStore) (*ProgressService, error) {
	s := &ProgressService{
		store: store,
		now:   time.Now,
	}
	s.recorder = NewSessionRecorder(func() time.Time { return s.now() })

	data, err := loadProgress(store)
	if err != nil {
		return nil, err
	}
	s.data = data
	return s, nil
}

func loadProgress(store KeyValueStore) (*models.ProgressData, error) {
	raw, ok, err := store.Get(ProgressKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if !ok {
		return models.NewProgressData(), nil
	}

	data := models.NewProgressData()
	if err := json.Unmarshal([]byte(raw), data); err != nil {
		return nil, fmt.Errorf("failed to decode stored progress: %w", err)
	}
	data.Normalize()
	return data, nil
}

// StartSession begins a new live session, replacing any unfinished one
func (s *ProgressService) StartSession(mode models.Mode) (models.Session, error) {
	if !mode.Valid() {
		return models.Session{}, validation.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", mode)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if active, ok := s.recorder.Active(); ok {
		log.Printf("Discarding unfinished session %s (%d attempts)", active.ID, active.WordsAttempted)
	}
	return s.recorder.Start(mode), nil
}

// TrackAttempt records an attempt; without a live session it does nothing and reports false
func (s *ProgressService) TrackAttempt(word string, correct bool, difficulty int) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.Track(word, correct, difficulty)
}

// ActiveSession returns the live session, if any
func (s *ProgressService) ActiveSession() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.Active()
}

// EndSession closes the live session, folds it into progress and persists the result.
// Without a live session it returns the unchanged progress and false.
func (s *ProgressService) EndSession() (models.ProgressData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed, ok := s.recorder.End()
	if !ok {
		return s.data.Clone(), false
	}

	s.syncLocked()
	Fold(s.data, closed)
	s.persistLocked()
	return s.data.Clone(), true
}

// Progress returns a snapshot of the cumulative progress
func (s *ProgressService) Progress() models.ProgressData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	return s.data.Clone()
}

// GenerateReport summarises progress over timeframe
func (s *ProgressService) GenerateReport(timeframe models.Timeframe) models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	return GenerateReport(s.data, timeframe, s.now())
}

// ExportCSV renders every recorded attempt as CSV
func (s *ProgressService) ExportCSV() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	return ExportCSV(s.data)
}

// Dashboard returns the at-a-glance summary
func (s *ProgressService) Dashboard() models.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	return BuildDashboard(s.data, s.now())
}

// ClearAllData resets progress to empty, discards the live session and removes
// the durable record. It cannot be undone. A failed removal is only logged.
func (s *ProgressService) ClearAllData() models.ProgressData {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clearLocked(); err != nil {
		log.Printf("Warning: %v", err)
	}
	return s.data.Clone()
}

// PurgeAllData clears like ClearAllData but reports a failed removal, and
// returns how many stored sessions were erased
func (s *ProgressService) PurgeAllData() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncLocked()
	cleared := len(s.data.Sessions)
	if err := s.clearLocked(); err != nil {
		return 0, err
	}
	return cleared, nil
}

func (s *ProgressService) clearLocked() error {
	s.data = models.NewProgressData()
	s.recorder.Discard()
	if err := s.store.Remove(ProgressKey); err != nil {
		// Keep the empty state authoritative so a reload cannot resurrect it
		s.unsaved = true
		return fmt.Errorf("failed to remove stored progress: %w", err)
	}
	s.unsaved = false
	return nil
}

// ReplaceProgress swaps in restored progress and persists it before returning
func (s *ProgressService) ReplaceProgress(data models.ProgressData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := data.Clone()
	replacement.Normalize()

	raw, err := json.Marshal(&replacement)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := s.store.Set(ProgressKey, string(raw)); err != nil {
		return fmt.Errorf("failed to store progress: %w", err)
	}
	s.data = &replacement
	s.unsaved = false
	return nil
}

// syncLocked replaces the in-memory progress with the stored record. While a
// write is outstanding the in-memory copy wins, and a failed read keeps it.
func (s *ProgressService) syncLocked() {
	if s.unsaved {
		return
	}
	data, err := loadProgress(s.store)
	if err != nil {
		log.Printf("Warning: failed to reload progress: %v", err)
		return
	}
	s.data = data
}

// persistLocked writes progress without acknowledging the caller; a failed
// write leaves the in-memory state ahead of the store
func (s *ProgressService) persistLocked() {
	raw, err := json.Marshal(s.data)
	if err != nil {
		log.Printf("Warning: failed to encode progress: %v", err)
		s.unsaved = true
		return
	}
	if err := s.store.Set(ProgressKey, string(raw)); err != nil {
		log.Printf("Warning: failed to persist progress: %v", err)
		s.unsaved = true
		return
	}
	s.unsaved = false
}
