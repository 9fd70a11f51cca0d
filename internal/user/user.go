package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	ClerkID               string     `json:"clerkId" db:"clerk_id"`
	Email                 string     `json:"email" db:"email"`
	Username              string     `json:"username" db:"username"`
	ImageURL              string     `json:"imageUrl,omitempty" db:"image_url"`
	Points                int        `json:"points" db:"points"`
	SpentPoints           int        `json:"spent_points" db:"spent_points"`
	WeeklyPoints          int        `json:"weekly_points" db:"weekly_points"`
	WeekStart             *time.Time `json:"week_start" db:"week_start"`
	Streak                int        `json:"streak" db:"streak"`
	LastLogin             *time.Time `json:"last_login" db:"last_login"`
	LastDailyCompletion   *time.Time `json:"last_daily_completion" db:"last_daily_completion"`
	Tier                  string     `json:"tier" db:"tier"`
	StreakFreezeAvailable bool       `json:"streak_freeze_available" db:"streak_freeze_available"`
	CreatedAt             time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" db:"updated_at"`
}

// AvailablePoints is the spendable balance: lifetime points minus what
// reward claims have already consumed.
func (u *User) AvailablePoints() int {
	return u.Points - u.SpentPoints
}
