package models

import "time"

// DayLayout is the calendar-day key format used by DailyStats
const DayLayout = "2006-01-02"

const (
	MasteryMinAttempts = 3
	MasteryAccuracy    = 90.0

	NeedsWorkMinAttempts      = 3
	DashboardNeedsWorkPercent = 50.0
	ReportNeedsWorkPercent    = 70.0
)

// WordStat accumulates a word's results across every closed session
type WordStat struct {
	Attempts    int       `json:"attempts"`
	Correct     int       `json:"correct"`
	LastAttempt time.Time `json:"lastAttempt"`
}

// Accuracy returns the percentage of correct attempts
func (w WordStat) Accuracy() float64 {
	return percent(w.Correct, w.Attempts)
}

// IsMastered reports whether the word has at least 3 attempts at 90% accuracy or better
func (w WordStat) IsMastered() bool {
	return w.Attempts >= MasteryMinAttempts && w.Accuracy() >= MasteryAccuracy
}

// NeedsWork reports whether the word has enough attempts and falls below threshold percent
func (w WordStat) NeedsWork(threshold float64) bool {
	return w.Attempts >= NeedsWorkMinAttempts && w.Accuracy() < threshold
}

// DailyStat accumulates a calendar day's results; TimeSpent is in milliseconds
type DailyStat struct {
	Attempts  int   `json:"attempts"`
	Correct   int   `json:"correct"`
	TimeSpent int64 `json:"timeSpent"`
}

// ProgressData is the cumulative, durable record of all closed sessions
type ProgressData struct {
	Sessions   []Session            `json:"sessions"`
	WordStats  map[string]WordStat  `json:"wordStats"`
	DailyStats map[string]DailyStat `json:"dailyStats"`
}

// NewProgressData returns the zero-value shape of ProgressData
func NewProgressData() *ProgressData {
	return &ProgressData{
		Sessions:   []Session{},
		WordStats:  map[string]WordStat{},
		DailyStats: map[string]DailyStat{},
	}
}

// Normalize replaces nil collections left behind by decoding with empty ones
func (p *ProgressData) Normalize() {
	if p.Sessions == nil {
		p.Sessions = []Session{}
	}
	if p.WordStats == nil {
		p.WordStats = map[string]WordStat{}
	}
	if p.DailyStats == nil {
		p.DailyStats = map[string]DailyStat{}
	}
	for i := range p.Sessions {
		if p.Sessions[i].WordDetails == nil {
			p.Sessions[i].WordDetails = map[string]WordDetail{}
		}
	}
}

// Clone returns a deep copy so callers never share maps with the store
func (p *ProgressData) Clone() ProgressData {
	out := ProgressData{
		Sessions:   make([]Session, len(p.Sessions)),
		WordStats:  make(map[string]WordStat, len(p.WordStats)),
		DailyStats: make(map[string]DailyStat, len(p.DailyStats)),
	}
	for i, s := range p.Sessions {
		out.Sessions[i] = s.Clone()
	}
	for word, stat := range p.WordStats {
		out.WordStats[word] = stat
	}
	for day, stat := range p.DailyStats {
		out.DailyStats[day] = stat
	}
	return out
}

// DayKey returns the DailyStats bucket for t in t's own location
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}
