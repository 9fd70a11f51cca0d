package leaderboard

import "github.com/google/uuid"

// WeeklyBonuses are the one-time payouts distributed to the top 5 users by
// weekly points when a week rolls over, best rank first.
var WeeklyBonuses = []int{500, 300, 200, 100, 50}

type Entry struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	ImageURL     *string   `json:"image_url" db:"image_url"`
	WeeklyPoints int       `json:"weekly_points" db:"weekly_points"`
	Streak       int       `json:"streak" db:"streak"`
	Rank         int       `json:"rank" db:"rank"`
}

type Leaderboard struct {
	Entries      []*Entry `json:"entries"`
	UserPosition *Entry   `json:"user_position"`
	TotalUsers   int      `json:"total_users"`
}
