package quest

import (
	"fmt"
	"time"

	"starLifeAPI/internal/clock"
)

// PeriodWindow returns the start of the current completion window for a
// quest type, relative to now. A quest may be completed at most once per
// window: daily resets at midnight, weekly at Monday 00:00, monthly on the
// first of the month.
func PeriodWindow(t QuestType, now time.Time) (time.Time, error) {
	switch t {
	case TypeDaily:
		return clock.DateOf(now), nil
	case TypeWeekly:
		return clock.StartOfWeek(now), nil
	case TypeMonthly:
		return clock.StartOfMonth(now), nil
	default:
		return time.Time{}, fmt.Errorf("unknown quest type %q", t)
	}
}

// PeriodName is the label surfaced in AlreadyCompletedThisPeriod errors.
func PeriodName(t QuestType) string {
	return string(t)
}
