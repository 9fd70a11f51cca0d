package points

import (
	"time"

	"github.com/google/uuid"
)

// Reasons recorded in the points history ledger.
const (
	ReasonQuest          = "quest_completion"
	ReasonCommunityQuest = "community_quest_completion"
	ReasonWeeklyBonus    = "weekly_bonus"
	ReasonRewardClaim    = "reward_claim"
)

// HistoryEntry is one append-only row of the points ledger. Delta is
// negative only for reward claims; BalanceAfter is the available balance
// (points minus spent points) after the mutation.
type HistoryEntry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Delta        int       `json:"delta" db:"delta"`
	Reason       string    `json:"reason" db:"reason"`
	BalanceAfter int       `json:"balance_after" db:"balance_after"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
