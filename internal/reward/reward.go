package reward

import (
	"time"

	"github.com/google/uuid"
)

type Reward struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"reward_name" db:"reward_name"`
	Description string    `json:"reward_description" db:"reward_description"`
	PointsCost  int       `json:"points_cost" db:"points_cost"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Claim struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	RewardID  uuid.UUID `json:"reward_id" db:"reward_id"`
	ClaimedAt time.Time `json:"claimed_at" db:"claimed_at"`
}

type ClaimResult struct {
	NewPoints  int    `json:"new_points"`
	RewardName string `json:"reward_name"`
}
