package recurrence

import (
	"time"
)

// Pattern is the interval at which a recurring task repeats.
type Pattern string

const (
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
	PatternYearly  Pattern = "yearly"
)

// PatternError reports an unrecognized recurrence pattern.
type PatternError struct {
	Value string
}

func (e PatternError) Error() string {
	return "unknown recurrence pattern: " + e.Value
}

// ParsePattern validates a raw pattern string. Anything outside the four
// recognized values is rejected so the caller can fail before mutating state.
func ParsePattern(raw string) (Pattern, error) {
	switch Pattern(raw) {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternYearly:
		return Pattern(raw), nil
	default:
		return "", PatternError{Value: raw}
	}
}

// Valid reports whether p is one of the recognized patterns.
func (p Pattern) Valid() bool {
	_, err := ParsePattern(string(p))
	return err == nil
}

// NextOccurrence returns the due date of the successor occurrence: the basis
// date advanced by exactly one pattern unit. Month and year advancement use
// calendar arithmetic (time.AddDate), so leap days and month lengths
// normalize the way a calendar does rather than adding a fixed duration.
// The basis is truncated to a calendar date first; due dates carry no time
// component.
func NextOccurrence(basis time.Time, p Pattern) (time.Time, error) {
	day := DateOf(basis)
	switch p {
	case PatternDaily:
		return day.AddDate(0, 0, 1), nil
	case PatternWeekly:
		return day.AddDate(0, 0, 7), nil
	case PatternMonthly:
		return day.AddDate(0, 1, 0), nil
	case PatternYearly:
		return day.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, PatternError{Value: string(p)}
	}
}

// DateOf strips the time-of-day component, keeping year/month/day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
