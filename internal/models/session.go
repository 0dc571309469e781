package models

import "time"

// Mode identifies the activity an attempt was made in
type Mode string

const (
	ModeLearn      Mode = "learn"
	ModeCopy       Mode = "copy"
	ModeFillBlanks Mode = "fillBlanks"
	ModeTest       Mode = "test"
)

// AllModes lists every known activity mode in display order
var AllModes = []Mode{ModeLearn, ModeCopy, ModeFillBlanks, ModeTest}

// Valid reports whether m is a known activity mode
func (m Mode) Valid() bool {
	for _, known := range AllModes {
		if m == known {
			return true
		}
	}
	return false
}

const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// Attempt is one evaluated response to a prompt word
type Attempt struct {
	Word       string    `json:"word"`
	Correct    bool      `json:"correct"`
	Mode       Mode      `json:"mode"`
	Difficulty *int      `json:"difficulty,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// WordDetail holds per-word counters within a single session
type WordDetail struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// Session is one continuous practice interval
type Session struct {
	ID             string                `json:"id"`
	Mode           Mode                  `json:"mode"`
	StartTime      time.Time             `json:"startTime"`
	EndTime        *time.Time            `json:"endTime"`
	Duration       int64                 `json:"duration"`
	WordsAttempted int                   `json:"wordsAttempted"`
	WordsCorrect   int                   `json:"wordsCorrect"`
	WordDetails    map[string]WordDetail `json:"wordDetails"`
	Attempts       []Attempt             `json:"attempts"`
}

// IsClosed reports whether the session has been ended
func (s *Session) IsClosed() bool {
	return s.EndTime != nil
}

// Accuracy returns the percentage of correct attempts, or 0 when nothing was attempted
func (s *Session) Accuracy() float64 {
	return percent(s.WordsCorrect, s.WordsAttempted)
}

// Clone returns a deep copy of the session
func (s Session) Clone() Session {
	out := s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	out.WordDetails = make(map[string]WordDetail, len(s.WordDetails))
	for word, detail := range s.WordDetails {
		out.WordDetails[word] = detail
	}
	out.Attempts = make([]Attempt, len(s.Attempts))
	for i, attempt := range s.Attempts {
		out.Attempts[i] = attempt
		if attempt.Difficulty != nil {
			d := *attempt.Difficulty
			out.Attempts[i].Difficulty = &d
		}
	}
	return out
}

func percent(correct, attempts int) float64 {
	if attempts == 0 {
		return 0
	}
	return float64(correct) / float64(attempts) * 100
}
