package utils

import (
	"fmt"
	"time"
)

// dateFormats lists the accepted input formats, most specific first.
var dateFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseDate parses a date string, trying multiple formats.
func ParseDate(dateStr string) (time.Time, error) {
	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q: %w", dateStr, lastErr)
}

// Midnight truncates a time to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a time as the canonical YYYY-MM-DD key used to group
// records by calendar day.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Weekday returns the English weekday name for a date ("Monday", ...).
func Weekday(t time.Time) string {
	return t.Weekday().String()
}
