package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name    string
		basis   time.Time
		pattern Pattern
		want    time.Time
	}{
		{"daily", date(2024, 3, 10), PatternDaily, date(2024, 3, 11)},
		{"daily into leap day", date(2024, 2, 28), PatternDaily, date(2024, 2, 29)},
		{"daily off leap day", date(2024, 2, 29), PatternDaily, date(2024, 3, 1)},
		{"daily non-leap february", date(2023, 2, 28), PatternDaily, date(2023, 3, 1)},
		{"weekly", date(2024, 3, 10), PatternWeekly, date(2024, 3, 17)},
		{"weekly across month", date(2024, 3, 28), PatternWeekly, date(2024, 4, 4)},
		{"monthly", date(2024, 3, 10), PatternMonthly, date(2024, 4, 10)},
		{"monthly normalizes past short month", date(2024, 1, 31), PatternMonthly, date(2024, 3, 2)},
		{"monthly across year", date(2024, 12, 15), PatternMonthly, date(2025, 1, 15)},
		{"yearly", date(2024, 3, 10), PatternYearly, date(2025, 3, 10)},
		{"yearly off leap day", date(2024, 2, 29), PatternYearly, date(2025, 3, 1)},
		{"basis time-of-day ignored", time.Date(2024, 3, 10, 23, 45, 0, 0, time.UTC), PatternDaily, date(2024, 3, 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.basis, tt.pattern)
			if err != nil {
				t.Fatalf("NextOccurrence: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
			if !got.After(DateOf(tt.basis)) {
				t.Errorf("next occurrence %s is not after basis %s", got, tt.basis)
			}
		})
	}
}

func TestNextOccurrence_RepeatedDaily(t *testing.T) {
	// Walking daily across a leap-year February must hit every calendar day.
	current := date(2024, 2, 28)
	want := []time.Time{date(2024, 2, 29), date(2024, 3, 1), date(2024, 3, 2)}
	for i, expected := range want {
		next, err := NextOccurrence(current, PatternDaily)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !next.Equal(expected) {
			t.Fatalf("step %d: got %s, want %s", i, next.Format("2006-01-02"), expected.Format("2006-01-02"))
		}
		current = next
	}
}

func TestNextOccurrence_UnknownPattern(t *testing.T) {
	if _, err := NextOccurrence(date(2024, 3, 10), Pattern("fortnightly")); err == nil {
		t.Fatal("expected error for unknown pattern")
	}
}

func TestParsePattern(t *testing.T) {
	for _, valid := range []string{"daily", "weekly", "monthly", "yearly"} {
		if _, err := ParsePattern(valid); err != nil {
			t.Errorf("ParsePattern(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "Daily", "hourly", "every other day"} {
		if _, err := ParsePattern(invalid); err == nil {
			t.Errorf("ParsePattern(%q) succeeded, want error", invalid)
		}
	}
}
