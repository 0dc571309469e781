package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"lessonlab/internal/models"
)

func sampleReport() models.Report {
	return models.Report{
		Timeframe:   models.TimeframeWeek,
		GeneratedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		WindowStart: time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC),
		Summary: models.ReportSummary{
			TotalSessions:       2,
			TotalTime:           185000,
			TotalWordsAttempted: 4,
			TotalWordsCorrect:   3,
			AverageAccuracy:     75,
		},
		ModeBreakdown: map[models.Mode]models.ModeStats{
			models.ModeTest: {Sessions: 2, Time: 185000, Attempted: 4, Correct: 3, Accuracy: 75},
		},
		WordPerformance: []models.WordPerformance{
			{Word: "dog", Attempts: 2, Correct: 1, Accuracy: 50, NeedsWork: true},
			{Word: "cat", Attempts: 2, Correct: 2, Accuracy: 100},
		},
		Recommendations: []string{"Focus on these words: dog."},
	}
}

func TestRenderReportFormats(t *testing.T) {
	report := sampleReport()

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := renderReport(&buf, report, "text"); err != nil {
			t.Fatalf("renderReport returned error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"Sessions:        2", "Practice time:   3m05s", "Accuracy:        75.0%", "dog", "needs work", "Focus on these words: dog."} {
			if !strings.Contains(out, want) {
				t.Errorf("text output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := renderReport(&buf, report, "JSON"); err != nil {
			t.Fatalf("renderReport returned error: %v", err)
		}
		var decoded models.Report
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if decoded.Summary.TotalWordsCorrect != 3 || len(decoded.WordPerformance) != 2 {
			t.Errorf("decoded report = %+v", decoded)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := renderReport(&buf, report, "yaml"); err != nil {
			t.Fatalf("renderReport returned error: %v", err)
		}
		if !strings.Contains(buf.String(), "totalWordsAttempted: 4") {
			t.Errorf("yaml output missing summary:\n%s", buf.String())
		}
		var decoded map[string]interface{}
		if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not YAML: %v", err)
		}
		if decoded["timeframe"] != "week" {
			t.Errorf("timeframe = %v", decoded["timeframe"])
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := renderReport(&bytes.Buffer{}, report, "xml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestFormatMillis(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0m00s"},
		{59999, "0m59s"},
		{185000, "3m05s"},
		{3723000, "1h02m03s"},
	}
	for _, tt := range tests {
		if got := formatMillis(tt.ms); got != tt.want {
			t.Errorf("formatMillis(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{{"report"}, {"export-csv"}, {"backup", "export"}, {"backup", "import"}, {"clear"}, {"cache", "clear"}} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd == rootCmd {
			t.Errorf("command %v not registered: %v", path, err)
		}
	}
}
