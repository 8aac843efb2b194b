// Package timeutil provides time helpers for the Samara timezone (UTC+4),
// where the personal cabinet schedules its lessons.
package timeutil

import (
	"fmt"
	"time"
)

// SamaraTZ is the Samara timezone (UTC+4, no DST since 2011).
var SamaraTZ = time.FixedZone("Europe/Samara", 4*60*60)

// Layouts used by the cabinet API and the command line.
const (
	// LayoutAPI is the timestamp format of the lessons API, e.g. 2025-01-27T00:00:00+04:00.
	LayoutAPI = "2006-01-02T15:04:05-07:00"

	// LayoutDate is the calendar day format stored in the lessons table.
	LayoutDate = "2006-01-02"
)

// Now returns the current time in Samara timezone.
func Now() time.Time {
	return time.Now().In(SamaraTZ)
}

// Date creates midnight of the given day in Samara timezone.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, SamaraTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Samara timezone.
func StartOfDay(t time.Time) time.Time {
	s := t.In(SamaraTZ)
	return Date(s.Year(), s.Month(), s.Day())
}

// FormatAPITimestamp formats t in Samara time the way the lessons API expects.
func FormatAPITimestamp(t time.Time) string {
	return t.In(SamaraTZ).Format(LayoutAPI)
}

// FormatDate formats t as YYYY-MM-DD in Samara time.
func FormatDate(t time.Time) string {
	return t.In(SamaraTZ).Format(LayoutDate)
}

// ParseDate parses YYYY-MM-DD as midnight in Samara timezone.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(LayoutDate, value, SamaraTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SEMESTER WINDOW
// ══════════════════════════════════════════════════════════════════════════════

// Semester boundaries. The spring term runs from late January to the end of
// the June session; the autumn term covers the rest of the academic year.
func springStart(year int) time.Time { return Date(year, time.January, 27) }
func springEnd(year int) time.Time   { return Date(year, time.June, 10) }
func autumnStart(year int) time.Time { return Date(year, time.August, 25) }

// SemesterWindow returns the fetch range of the semester containing t.
// January 1-26 belongs to the autumn term that started the previous year.
func SemesterWindow(t time.Time) (start, end time.Time) {
	s := t.In(SamaraTZ)
	year := s.Year()

	switch {
	case s.Before(springStart(year)):
		return autumnStart(year - 1), springStart(year)
	case s.Before(autumnStart(year)):
		return springStart(year), springEnd(year)
	default:
		return autumnStart(year), springStart(year + 1)
	}
}
