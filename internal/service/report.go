package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"lessonlab/internal/models"
)

const (
	lowOverallAccuracy  = 70.0
	lowModeAccuracy     = 60.0
	maxRecommendedWords = 5
)

// GenerateReport summarises data over the timeframe ending at now.
// It only reads data.
func GenerateReport(data *models.ProgressData, timeframe models.Timeframe, now time.Time) models.Report {
	windowStart := timeframe.WindowStart(now)

	report := models.Report{
		Timeframe:       timeframe,
		GeneratedAt:     now,
		WindowStart:     windowStart,
		ModeBreakdown:   map[models.Mode]models.ModeStats{},
		WordPerformance: []models.WordPerformance{},
	}

	for _, session := range data.Sessions {
		if session.StartTime.Before(windowStart) {
			continue
		}

		report.Summary.TotalSessions++
		report.Summary.TotalTime += session.Duration
		report.Summary.TotalWordsAttempted += session.WordsAttempted
		report.Summary.TotalWordsCorrect += session.WordsCorrect

		stats := report.ModeBreakdown[session.Mode]
		stats.Sessions++
		stats.Time += session.Duration
		stats.Attempted += session.WordsAttempted
		stats.Correct += session.WordsCorrect
		report.ModeBreakdown[session.Mode] = stats
	}

	report.Summary.AverageAccuracy = accuracy(report.Summary.TotalWordsCorrect, report.Summary.TotalWordsAttempted)
	for mode, stats := range report.ModeBreakdown {
		stats.Accuracy = accuracy(stats.Correct, stats.Attempted)
		report.ModeBreakdown[mode] = stats
	}

	for word, stat := range data.WordStats {
		if stat.LastAttempt.Before(windowStart) {
			continue
		}
		wordAccuracy := stat.Accuracy()
		// No minimum attempt count here: one miss flags a word in the report.
		// The dashboard's needs-work list is the one that waits for three attempts.
		report.WordPerformance = append(report.WordPerformance, models.WordPerformance{
			Word:        word,
			Attempts:    stat.Attempts,
			Correct:     stat.Correct,
			Accuracy:    wordAccuracy,
			NeedsWork:   wordAccuracy < models.ReportNeedsWorkPercent,
			Mastered:    stat.IsMastered(),
			LastAttempt: stat.LastAttempt,
		})
	}
	sort.Slice(report.WordPerformance, func(i, j int) bool {
		a, b := report.WordPerformance[i], report.WordPerformance[j]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		return a.Word < b.Word
	})

	report.Recommendations = recommendations(report)
	return report
}

func recommendations(report models.Report) []string {
	recs := []string{}

	if report.Summary.TotalSessions == 0 {
		return append(recs, "No practice sessions in this period. A short session today is a great way to start.")
	}

	if report.Summary.TotalWordsAttempted > 0 && report.Summary.AverageAccuracy < lowOverallAccuracy {
		recs = append(recs, fmt.Sprintf(
			"Overall accuracy is %.0f%%. Try revisiting familiar words in learn mode before moving on.",
			report.Summary.AverageAccuracy))
	}

	for _, mode := range sortedModes(report.ModeBreakdown) {
		stats := report.ModeBreakdown[mode]
		if stats.Attempted > 0 && stats.Accuracy < lowModeAccuracy {
			recs = append(recs, fmt.Sprintf(
				"Accuracy in %s mode is %.0f%%. Extra practice in this mode may help.", mode, stats.Accuracy))
		}
	}

	var needsWork []string
	for _, wp := range report.WordPerformance {
		if wp.NeedsWork {
			needsWork = append(needsWork, wp.Word)
			if len(needsWork) == maxRecommendedWords {
				break
			}
		}
	}
	if len(needsWork) > 0 {
		recs = append(recs, "Focus on these words: "+strings.Join(needsWork, ", ")+".")
	}

	if len(recs) == 0 {
		recs = append(recs, "Great work! Keep up the regular practice.")
	}
	return recs
}

// sortedModes orders modes as AllModes lists them, unknown modes last by name
func sortedModes(breakdown map[models.Mode]models.ModeStats) []models.Mode {
	rank := make(map[models.Mode]int, len(models.AllModes))
	for i, mode := range models.AllModes {
		rank[mode] = i
	}

	modes := make([]models.Mode, 0, len(breakdown))
	for mode := range breakdown {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool {
		ri, iKnown := rank[modes[i]]
		rj, jKnown := rank[modes[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return modes[i] < modes[j]
		}
	})
	return modes
}

func accuracy(correct, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return float64(correct) / float64(attempted) * 100
}
