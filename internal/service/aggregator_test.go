package service

import (
	"testing"
	"time"

	"lessonlab/internal/models"
)

func closedSession(id string, mode models.Mode, start time.Time, duration time.Duration, details map[string]models.WordDetail) models.Session {
	end := start.Add(duration)
	s := models.Session{
		ID:          id,
		Mode:        mode,
		StartTime:   start,
		EndTime:     &end,
		Duration:    duration.Milliseconds(),
		WordDetails: details,
	}
	for word, d := range details {
		s.WordsAttempted += d.Attempts
		s.WordsCorrect += d.Correct
		for i := 0; i < d.Attempts; i++ {
			s.Attempts = append(s.Attempts, models.Attempt{Word: word, Correct: i < d.Correct, Mode: mode, Timestamp: start})
		}
	}
	return s
}

func TestFoldAddsSessionToStats(t *testing.T) {
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	data := models.NewProgressData()
	data.WordStats["cat"] = models.WordStat{Attempts: 4, Correct: 3}

	before := data.Clone()
	session := closedSession("s1", models.ModeTest, start, 5*time.Minute, map[string]models.WordDetail{
		"cat": {Attempts: 2, Correct: 1},
		"dog": {Attempts: 1, Correct: 1},
	})

	Fold(data, session)

	for word, detail := range session.WordDetails {
		want := before.WordStats[word].Attempts + detail.Attempts
		if got := data.WordStats[word].Attempts; got != want {
			t.Errorf("wordStats[%s].attempts = %d, want %d", word, got, want)
		}
		if !data.WordStats[word].LastAttempt.Equal(*session.EndTime) {
			t.Errorf("wordStats[%s].lastAttempt = %v, want session end", word, data.WordStats[word].LastAttempt)
		}
	}

	daily := data.DailyStats["2024-03-15"]
	if daily.Attempts != 3 || daily.Correct != 2 || daily.TimeSpent != 300000 {
		t.Errorf("dailyStats = %+v, want 3/2/300000", daily)
	}
	if len(data.Sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(data.Sessions))
	}
}

func TestFoldBucketsByStartDay(t *testing.T) {
	start := time.Date(2024, 3, 15, 23, 50, 0, 0, time.UTC)
	data := models.NewProgressData()

	Fold(data, closedSession("s1", models.ModeLearn, start, 20*time.Minute, map[string]models.WordDetail{
		"cat": {Attempts: 1, Correct: 1},
	}))

	if _, ok := data.DailyStats["2024-03-16"]; ok {
		t.Error("session crossing midnight was bucketed under its end day")
	}
	if data.DailyStats["2024-03-15"].Attempts != 1 {
		t.Error("session was not bucketed under its start day")
	}
}

func TestRebuildProgressMatchesFolds(t *testing.T) {
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	a := closedSession("a", models.ModeLearn, start, time.Minute, map[string]models.WordDetail{"cat": {Attempts: 2, Correct: 2}})
	b := closedSession("b", models.ModeTest, start.Add(time.Hour), time.Minute, map[string]models.WordDetail{"cat": {Attempts: 1, Correct: 0}})

	rebuilt := RebuildProgress([]models.Session{b, a, a})
	if len(rebuilt.Sessions) != 2 || rebuilt.Sessions[0].ID != "a" {
		t.Fatalf("sessions = %+v, want a then b without duplicates", rebuilt.Sessions)
	}
	if stat := rebuilt.WordStats["cat"]; stat.Attempts != 3 || stat.Correct != 2 {
		t.Errorf("wordStats[cat] = %+v, want 3/2", stat)
	}
}

func TestRebuildProgressDropsUnfinishedSessions(t *testing.T) {
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	done := closedSession("done", models.ModeLearn, start, time.Minute, map[string]models.WordDetail{"cat": {Attempts: 1, Correct: 1}})
	open := closedSession("open", models.ModeTest, start, time.Minute, map[string]models.WordDetail{"dog": {Attempts: 1}})
	open.EndTime = nil

	rebuilt := RebuildProgress([]models.Session{done, open})
	if len(rebuilt.Sessions) != 1 || rebuilt.Sessions[0].ID != "done" {
		t.Errorf("sessions = %+v, want only the closed one", rebuilt.Sessions)
	}
	if _, ok := rebuilt.WordStats["dog"]; ok {
		t.Error("attempts from an unfinished session were folded")
	}
}
