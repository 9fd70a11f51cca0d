package health

import (
	"time"

	"github.com/google/uuid"
)

// Metric is one day's health snapshot, fed into the AI trainer context.
type Metric struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	Steps         int       `json:"steps" db:"steps"`
	HeartRate     int       `json:"heart_rate" db:"heart_rate"`
	SleepHours    float64   `json:"sleep_hours" db:"sleep_hours"`
	ActiveMinutes int       `json:"active_minutes" db:"active_minutes"`
	Calories      int       `json:"calories" db:"calories"`
	MetricDate    time.Time `json:"metric_date" db:"metric_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type RecordMetricRequest struct {
	Steps         int     `json:"steps"`
	HeartRate     int     `json:"heart_rate"`
	SleepHours    float64 `json:"sleep_hours"`
	ActiveMinutes int     `json:"active_minutes"`
	Calories      int     `json:"calories"`
}
