package user

import (
	"testing"
	"time"
)

var today = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) // a Monday

func days(n int) *time.Time {
	t := today.AddDate(0, 0, n)
	return &t
}

func TestShouldResetStreak(t *testing.T) {
	tests := []struct {
		name      string
		lastLogin *time.Time
		lastDaily *time.Time
		want      bool
	}{
		{"never logged in", nil, nil, false},
		{"logged in today", days(0), nil, false},
		{"logged in yesterday", days(-1), nil, false},
		{"missed one day", days(-2), nil, true},
		{"stale by a week", days(-7), nil, true},
		{"stale but freeze consumed today", days(-7), days(0), false},
		{"stale, freeze consumed yesterday", days(-7), days(-1), true},
	}

	for _, tt := range tests {
		if got := ShouldResetStreak(tt.lastLogin, tt.lastDaily, today); got != tt.want {
			t.Errorf("%s: ShouldResetStreak = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRolloverDue(t *testing.T) {
	thisMonday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	lastMonday := thisMonday.AddDate(0, 0, -7)
	twoWeeksAgo := thisMonday.AddDate(0, 0, -14)

	if !RolloverDue(nil, today) {
		t.Error("first access should roll over")
	}
	if !RolloverDue(&lastMonday, today) {
		t.Error("previous week should roll over")
	}
	if !RolloverDue(&twoWeeksAgo, today) {
		t.Error("two-week-old weekStart should roll over")
	}
	if RolloverDue(&thisMonday, today) {
		t.Error("current week should not roll over")
	}
}

func TestCanIncrementStreak(t *testing.T) {
	if !CanIncrementStreak(nil, today) {
		t.Error("no prior completion should allow increment")
	}
	if !CanIncrementStreak(days(-1), today) {
		t.Error("yesterday's completion should allow increment")
	}
	if CanIncrementStreak(days(0), today) {
		t.Error("today's completion must block a second increment")
	}
}

func TestAvailablePoints(t *testing.T) {
	u := &User{Points: 700, SpentPoints: 250}
	if got := u.AvailablePoints(); got != 450 {
		t.Errorf("AvailablePoints = %d, want 450", got)
	}
}
