package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lessonlab/internal/models"
)

// RecorderState is the tag of the SessionRecorder's state
type RecorderState string

const (
	RecorderIdle   RecorderState = "idle"
	RecorderActive RecorderState = "active"
)

// SessionRecorder holds at most one live Session.
// Track and End on an idle recorder do nothing and report false.
type SessionRecorder struct {
	live  *models.Session
	now   func() time.Time
	newID func() string
}

// NewSessionRecorder creates an idle recorder reading time from now
func NewSessionRecorder(now func() time.Time) *SessionRecorder {
	return &SessionRecorder{
		now:   now,
		newID: func() string { return uuid.New().String() },
	}
}

// State reports whether a session is live
func (r *SessionRecorder) State() RecorderState {
	if r.live == nil {
		return RecorderIdle
	}
	return RecorderActive
}

// Active returns a snapshot of the live session
func (r *SessionRecorder) Active() (models.Session, bool) {
	if r.live == nil {
		return models.Session{}, false
	}
	return r.live.Clone(), true
}

// Start replaces any live session with a fresh one
func (r *SessionRecorder) Start(mode models.Mode) models.Session {
	r.live = &models.Session{
		ID:          r.newID(),
		Mode:        mode,
		StartTime:   r.now(),
		WordDetails: map[string]models.WordDetail{},
		Attempts:    []models.Attempt{},
	}
	return r.live.Clone()
}

// Track records one attempt against the live session.
// difficulty outside 1..3 is recorded as absent.
func (r *SessionRecorder) Track(word string, correct bool, difficulty int) (models.Session, bool) {
	if r.live == nil {
		return models.Session{}, false
	}

	word = strings.TrimSpace(word)
	attempt := models.Attempt{
		Word:      word,
		Correct:   correct,
		Mode:      r.live.Mode,
		Timestamp: r.now(),
	}
	if difficulty >= models.MinDifficulty && difficulty <= models.MaxDifficulty {
		d := difficulty
		attempt.Difficulty = &d
	}

	detail := r.live.WordDetails[word]
	detail.Attempts++
	r.live.WordsAttempted++
	if correct {
		detail.Correct++
		r.live.WordsCorrect++
	}
	r.live.WordDetails[word] = detail
	r.live.Attempts = append(r.live.Attempts, attempt)

	return r.live.Clone(), true
}

// End closes the live session and returns the recorder to idle.
// A session can therefore be closed exactly once.
func (r *SessionRecorder) End() (models.Session, bool) {
	if r.live == nil {
		return models.Session{}, false
	}

	closed := *r.live
	r.live = nil

	end := r.now()
	closed.EndTime = &end
	closed.Duration = end.Sub(closed.StartTime).Milliseconds()
	if closed.Duration < 0 {
		closed.Duration = 0
	}
	return closed, true
}

// Discard drops the live session without closing it
func (r *SessionRecorder) Discard() {
	r.live = nil
}
