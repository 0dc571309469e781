package models

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe selects the reporting window
type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeAll   Timeframe = "all"
)

// ParseTimeframe converts a query value into a Timeframe
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case TimeframeDay, TimeframeWeek, TimeframeMonth, TimeframeAll:
		return tf, nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// WindowStart returns the earliest session start time included in the window
func (tf Timeframe) WindowStart(now time.Time) time.Time {
	switch tf {
	case TimeframeDay:
		return now.Add(-24 * time.Hour)
	case TimeframeWeek:
		return now.Add(-7 * 24 * time.Hour)
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	default:
		return time.Unix(0, 0)
	}
}

// ReportSummary totals a report window
type ReportSummary struct {
	TotalSessions       int     `json:"totalSessions" yaml:"totalSessions"`
	TotalTime           int64   `json:"totalTime" yaml:"totalTime"`
	TotalWordsAttempted int     `json:"totalWordsAttempted" yaml:"totalWordsAttempted"`
	TotalWordsCorrect   int     `json:"totalWordsCorrect" yaml:"totalWordsCorrect"`
	AverageAccuracy     float64 `json:"averageAccuracy" yaml:"averageAccuracy"`
}

// ModeStats totals the in-window sessions recorded under one mode
type ModeStats struct {
	Sessions  int     `json:"sessions" yaml:"sessions"`
	Time      int64   `json:"time" yaml:"time"`
	Attempted int     `json:"attempted" yaml:"attempted"`
	Correct   int     `json:"correct" yaml:"correct"`
	Accuracy  float64 `json:"accuracy" yaml:"accuracy"`
}

// WordPerformance describes one word attempted within the window
type WordPerformance struct {
	Word        string    `json:"word" yaml:"word"`
	Attempts    int       `json:"attempts" yaml:"attempts"`
	Correct     int       `json:"correct" yaml:"correct"`
	Accuracy    float64   `json:"accuracy" yaml:"accuracy"`
	NeedsWork   bool      `json:"needsWork" yaml:"needsWork"`
	Mastered    bool      `json:"mastered" yaml:"mastered"`
	LastAttempt time.Time `json:"lastAttempt" yaml:"lastAttempt"`
}

// Report is a read-only, point-in-time summary of ProgressData
type Report struct {
	Timeframe       Timeframe          `json:"timeframe" yaml:"timeframe"`
	GeneratedAt     time.Time          `json:"generatedAt" yaml:"generatedAt"`
	WindowStart     time.Time          `json:"windowStart" yaml:"windowStart"`
	Summary         ReportSummary      `json:"summary" yaml:"summary"`
	ModeBreakdown   map[Mode]ModeStats `json:"modeBreakdown" yaml:"modeBreakdown"`
	WordPerformance []WordPerformance  `json:"wordPerformance" yaml:"wordPerformance"`
	Recommendations []string           `json:"recommendations" yaml:"recommendations"`
}

// Dashboard is the at-a-glance view shown to adults
type Dashboard struct {
	TotalSessions       int       `json:"totalSessions"`
	TotalWordsAttempted int       `json:"totalWordsAttempted"`
	OverallAccuracy     float64   `json:"overallAccuracy"`
	MasteredWords       []string  `json:"masteredWords"`
	NeedsWorkWords      []string  `json:"needsWorkWords"`
	Today               DailyStat `json:"today"`
	CurrentStreak       int       `json:"currentStreak"`
	RecentSessions      []Session `json:"recentSessions"`
}
