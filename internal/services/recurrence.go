package services

import (
	"time"

	"carteira/internal/core"
)

// addMonths shifts a DD/MM/YYYY date forward by n months, clamping the day
// to the target month's length (31/01 + 1 month = 28/02 or 29/02). Dates
// that fail to parse come back unchanged; the permissive date handling of
// the caches tolerates them.
func addMonths(dateText string, n int) string {
	if n == 0 {
		return dateText
	}
	t, err := time.Parse("2006-01-02", core.DateToISO(dateText))
	if err != nil {
		return dateText
	}

	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := target.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	target = time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)

	return core.DateFromISO(target.Format("2006-01-02"))
}
