package service

import (
	"lessonlab/internal/models"
)

// Fold adds one closed session into data. It is not idempotent: folding the
// same session twice double-counts, so only ProgressService.EndSession calls it.
func Fold(data *models.ProgressData, closed models.Session) {
	data.Normalize()

	lastAttempt := closed.StartTime
	if closed.EndTime != nil {
		lastAttempt = *closed.EndTime
	}

	for word, detail := range closed.WordDetails {
		stat := data.WordStats[word]
		stat.Attempts += detail.Attempts
		stat.Correct += detail.Correct
		stat.LastAttempt = lastAttempt
		data.WordStats[word] = stat
	}

	// Bucketed by start day so a session crossing midnight stays in one bucket
	day := models.DayKey(closed.StartTime)
	daily := data.DailyStats[day]
	daily.Attempts += closed.WordsAttempted
	daily.Correct += closed.WordsCorrect
	daily.TimeSpent += closed.Duration
	data.DailyStats[day] = daily

	data.Sessions = append(data.Sessions, closed.Clone())
}
