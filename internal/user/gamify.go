package user

import (
	"time"

	"starLifeAPI/internal/clock"
)

// ShouldResetStreak decides whether the lazy on-access check breaks the
// streak: a gap of more than one calendar day since the last login, unless
// a streak freeze already stamped last_daily_completion with today's date.
func ShouldResetStreak(lastLogin, lastDailyCompletion *time.Time, today time.Time) bool {
	if lastLogin == nil {
		return false
	}
	if clock.DaysBetween(*lastLogin, today) <= 1 {
		return false
	}
	if lastDailyCompletion != nil && clock.SameDay(*lastDailyCompletion, today) {
		return false
	}
	return true
}

// RolloverDue reports whether the user's accumulating week is older than the
// current one. A nil weekStart means first access ever, which also rolls
// over (without a bonus payout).
func RolloverDue(weekStart *time.Time, now time.Time) bool {
	if weekStart == nil {
		return true
	}
	return weekStart.Before(clock.StartOfWeek(now))
}

// CanIncrementStreak guards the once-per-day streak increment.
func CanIncrementStreak(lastDailyCompletion *time.Time, today time.Time) bool {
	return lastDailyCompletion == nil || !clock.SameDay(*lastDailyCompletion, today)
}
