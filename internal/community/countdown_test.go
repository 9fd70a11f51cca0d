package community

import (
	"testing"
	"time"
)

func TestCountdown(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{"live", now.Add(-time.Hour), now.Add(time.Hour), "LIVE NOW"},
		{"live at exact start", now, now.Add(time.Hour), "LIVE NOW"},
		{"ended", now.Add(-2 * time.Hour), now.Add(-time.Hour), "Ended"},
		{"days away", now.Add(50 * time.Hour), now.Add(60 * time.Hour), "2d 2h"},
		{"hours away", now.Add(3*time.Hour + 20*time.Minute), now.Add(10 * time.Hour), "3h 20m"},
		{"minutes away", now.Add(45 * time.Minute), now.Add(2 * time.Hour), "45m"},
	}

	for _, tt := range tests {
		if got := Countdown(now, tt.start, tt.end); got != tt.want {
			t.Errorf("%s: Countdown = %q, want %q", tt.name, got, tt.want)
		}
	}
}
