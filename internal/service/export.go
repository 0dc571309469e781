package service

import (
	"strconv"
	"strings"

	"lessonlab/internal/models"
)

var csvHeader = []string{"Date", "Mode", "Word", "Correct", "Difficulty", "Session Duration (ms)"}

// ExportCSV flattens every recorded attempt into one row, sessions in stored
// order and attempts in recorded order. Every field is double-quoted and rows
// are joined by "\n", so identical data always yields identical bytes.
func ExportCSV(data *models.ProgressData) string {
	lines := []string{csvLine(csvHeader)}

	for _, session := range data.Sessions {
		date := models.DayKey(session.StartTime)
		duration := strconv.FormatInt(session.Duration, 10)

		for _, attempt := range session.Attempts {
			mode := attempt.Mode
			if mode == "" {
				mode = session.Mode
			}
			difficulty := ""
			if attempt.Difficulty != nil {
				difficulty = strconv.Itoa(*attempt.Difficulty)
			}
			lines = append(lines, csvLine([]string{
				date,
				string(mode),
				attempt.Word,
				strconv.FormatBool(attempt.Correct),
				difficulty,
				duration,
			}))
		}
	}

	return strings.Join(lines, "\n")
}

func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
