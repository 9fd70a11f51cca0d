package clock

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"wednesday", time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC), date(2026, 8, 24)},
		{"monday morning", time.Date(2026, 8, 24, 0, 1, 0, 0, time.UTC), date(2026, 8, 24)},
		{"sunday maps to previous monday", time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC), date(2026, 8, 24)},
		{"saturday", date(2026, 8, 29), date(2026, 8, 24)},
	}

	for _, tt := range tests {
		if got := StartOfWeek(tt.in); !got.Equal(tt.want) {
			t.Errorf("%s: StartOfWeek(%v) = %v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestStartOfMonth(t *testing.T) {
	in := time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	if got := StartOfMonth(in); !got.Equal(date(2026, 8, 1)) {
		t.Errorf("StartOfMonth = %v, want %v", got, date(2026, 8, 1))
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{date(2026, 8, 30), date(2026, 8, 31), 1},
		{date(2026, 8, 28), date(2026, 8, 31), 3},
		{time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 1, 0, 0, time.UTC), 1},
		{date(2026, 8, 31), date(2026, 8, 31), 0},
	}

	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDaysBetweenAcrossDSTTransitions(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		// US spring forward 2026-03-08: the local day is 23 hours long.
		{"two days over spring forward", time.Date(2026, 3, 7, 12, 0, 0, 0, ny), time.Date(2026, 3, 9, 12, 0, 0, 0, ny), 2},
		{"one day into spring forward", time.Date(2026, 3, 7, 22, 0, 0, 0, ny), time.Date(2026, 3, 8, 1, 0, 0, 0, ny), 1},
		// US fall back 2026-11-01: the local day is 25 hours long.
		{"two days over fall back", time.Date(2026, 10, 31, 12, 0, 0, 0, ny), time.Date(2026, 11, 2, 12, 0, 0, 0, ny), 2},
	}

	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: DaysBetween(%v, %v) = %d, want %d", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 8, 31, 1, 0, 0, 0, time.UTC)
	b := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Error("expected same day")
	}
	if SameDay(a, a.AddDate(0, 0, 1)) {
		t.Error("expected different days")
	}
}
