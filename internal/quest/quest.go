package quest

import (
	"time"

	"github.com/google/uuid"
)

type QuestType string

const (
	TypeDaily   QuestType = "daily"
	TypeWeekly  QuestType = "weekly"
	TypeMonthly QuestType = "monthly"
)

type Quest struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"quest_name" db:"quest_name"`
	Description  string    `json:"quest_description" db:"quest_description"`
	Type         QuestType `json:"quest_type" db:"quest_type"`
	PointsReward int       `json:"points_reward" db:"points_reward"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Completion struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	QuestID     uuid.UUID `json:"quest_id" db:"quest_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

// QuestWithStatus is a quest definition plus the caller's completion state
// for the current period window.
type QuestWithStatus struct {
	Quest
	Completed bool `json:"completed"`
}

// CompleteResult describes what a completion changed.
type CompleteResult struct {
	PointsAdded       int  `json:"points_added"`
	AllDailyComplete  bool `json:"all_daily_complete"`
	StreakIncremented bool `json:"streak_incremented"`
	NewStreak         int  `json:"new_streak"`
}
