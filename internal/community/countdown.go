package community

import (
	"fmt"
	"time"
)

// Countdown renders the time remaining until an event window as a display
// string: "LIVE NOW" while the event runs, then the largest two units of
// the wait ("2d 5h", "3h 20m", "45m"), or "Ended" after event_end.
func Countdown(now, eventStart, eventEnd time.Time) string {
	if now.After(eventEnd) {
		return "Ended"
	}
	if !now.Before(eventStart) {
		return "LIVE NOW"
	}

	until := eventStart.Sub(now)
	days := int(until.Hours()) / 24
	hours := int(until.Hours()) % 24
	minutes := int(until.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
