package service

import (
	"sort"
	"time"

	"lessonlab/internal/models"
)

const recentSessionCount = 5

// BuildDashboard derives the at-a-glance view of data as of now
func BuildDashboard(data *models.ProgressData, now time.Time) models.Dashboard {
	dashboard := models.Dashboard{
		TotalSessions:  len(data.Sessions),
		MasteredWords:  []string{},
		NeedsWorkWords: []string{},
		RecentSessions: []models.Session{},
		Today:          data.DailyStats[models.DayKey(now)],
		CurrentStreak:  currentStreak(data.DailyStats, now),
	}

	correct := 0
	for _, session := range data.Sessions {
		dashboard.TotalWordsAttempted += session.WordsAttempted
		correct += session.WordsCorrect
	}
	dashboard.OverallAccuracy = accuracy(correct, dashboard.TotalWordsAttempted)

	for word, stat := range data.WordStats {
		if stat.IsMastered() {
			dashboard.MasteredWords = append(dashboard.MasteredWords, word)
		}
		if stat.NeedsWork(models.DashboardNeedsWorkPercent) {
			dashboard.NeedsWorkWords = append(dashboard.NeedsWorkWords, word)
		}
	}
	sort.Strings(dashboard.MasteredWords)
	sort.Strings(dashboard.NeedsWorkWords)

	for i := len(data.Sessions) - 1; i >= 0 && len(dashboard.RecentSessions) < recentSessionCount; i-- {
		dashboard.RecentSessions = append(dashboard.RecentSessions, data.Sessions[i].Clone())
	}

	return dashboard
}

// currentStreak counts consecutive practice days ending today, or ending
// yesterday when nothing has been practised yet today
func currentStreak(daily map[string]models.DailyStat, now time.Time) int {
	day := now
	if daily[models.DayKey(day)].Attempts == 0 {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for daily[models.DayKey(day)].Attempts > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
