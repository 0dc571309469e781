package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lessonlab/internal/models"
)

var (
	reportTimeframe string
	reportFormat    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a progress report",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeframe, err := models.ParseTimeframe(reportTimeframe)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return renderReport(cmd.OutOrStdout(), a.progress.GenerateReport(timeframe), reportFormat)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportTimeframe, "timeframe", "t", string(models.TimeframeWeek), "report window: day, week, month or all")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(reportCmd)
}

func renderReport(w io.Writer, report models.Report, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return err
		}
		return encoder.Close()
	case "text":
		return renderReportText(w, report)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderReportText(w io.Writer, report models.Report) error {
	s := report.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "Progress report (%s, since %s)\n", report.Timeframe, report.WindowStart.Format("2006-01-02 15:04"))
	fmt.Fprintln(&b, "-------------")
	fmt.Fprintf(&b, "Sessions:        %d\n", s.TotalSessions)
	fmt.Fprintf(&b, "Practice time:   %s\n", formatMillis(s.TotalTime))
	fmt.Fprintf(&b, "Words attempted: %d\n", s.TotalWordsAttempted)
	fmt.Fprintf(&b, "Words correct:   %d\n", s.TotalWordsCorrect)
	fmt.Fprintf(&b, "Accuracy:        %.1f%%\n", s.AverageAccuracy)

	if len(report.ModeBreakdown) > 0 {
		fmt.Fprintln(&b, "\nBy mode:")
		for _, mode := range []models.Mode{models.ModeLearn, models.ModeCopy, models.ModeFillBlanks, models.ModeTest} {
			stats, ok := report.ModeBreakdown[mode]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %-10s %d sessions, %d/%d correct (%.1f%%)\n", mode, stats.Sessions, stats.Correct, stats.Attempted, stats.Accuracy)
		}
	}

	if len(report.WordPerformance) > 0 {
		fmt.Fprintln(&b, "\nWords:")
		for _, wp := range report.WordPerformance {
			marker := ""
			switch {
			case wp.NeedsWork:
				marker = "  needs work"
			case wp.Mastered:
				marker = "  mastered"
			}
			fmt.Fprintf(&b, "  %-16s %d/%d (%.0f%%)%s\n", wp.Word, wp.Correct, wp.Attempts, wp.Accuracy, marker)
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(&b, "\nRecommendations:")
		for _, r := range report.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatMillis renders a millisecond duration as 1h02m03s
func formatMillis(ms int64) string {
	seconds := ms / 1000
	h, m, sec := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	return fmt.Sprintf("%dm%02ds", m, sec)
}
