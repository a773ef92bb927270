// Package datetime provides date and time utility functions.
package datetime

import (
	"strings"
	"time"

	"github.com/iwvelando/rental-portfolio/pkg/constants"
)

const (
	// MonthLayout is the month-bucket key format.
	MonthLayout = constants.MonthLayout

	// DateLayout is the canonical day format.
	DateLayout = constants.DateLayout
)

// recordLayouts are the date shapes the record store is known to emit. Dates
// without a zone are interpreted in UTC.
var recordLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	MonthLayout,
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a record date in any of the supported layouts. The boolean is
// false for blank or unparsable values, which callers treat as absent.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range recordLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthKey returns the YYYY-MM bucket for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// RecordMonthKey returns the YYYY-MM bucket of a record date string.
func RecordMonthKey(value string) (string, bool) {
	t, ok := ParseDate(value)
	if !ok {
		return "", false
	}
	return MonthKey(t), true
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// WallClockUTC reinterprets t's wall clock reading in UTC. Record dates carry
// no zone and parse as UTC, so "now" is shifted the same way before comparing.
func WallClockUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// StartOfMonth returns midnight on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfQuarter returns midnight on the first day of t's calendar quarter.
func StartOfQuarter(t time.Time) time.Time {
	quarter := (int(t.Month()) - 1) / constants.MonthsPerQuarter
	month := time.Month(quarter*constants.MonthsPerQuarter + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, t.Location())
}

// StartOfYear returns midnight on January 1st of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// InRange reports whether t lies within [start, end], inclusive on both ends.
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// MonthKeysBetween walks month by month from start's month to end's month,
// inclusive, and returns the YYYY-MM keys in chronological order.
func MonthKeysBetween(start, end time.Time) []string {
	var keys []string
	cursor := StartOfMonth(start)
	last := StartOfMonth(end)
	for !cursor.After(last) {
		keys = append(keys, MonthKey(cursor))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return keys
}

// YearsBetween returns the whole number of years elapsed from start to end.
// Negative spans yield 0.
func YearsBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24 / constants.DaysPerYear)
}

// DaysUntil returns the number of whole days from now until t (negative when t is past).
func DaysUntil(now, t time.Time) int {
	return int(StartOfDay(t).Sub(StartOfDay(now)).Hours() / 24)
}
