package community

import (
	"time"

	"github.com/google/uuid"
)

type Community struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	MemberCount int       `json:"member_count" db:"member_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CommunityWithMembership adds the caller's joined flag for listings.
type CommunityWithMembership struct {
	Community
	Joined bool `json:"joined"`
}

type Membership struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CommunityID uuid.UUID `json:"community_id" db:"community_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

// CommunityQuest is an event-window quest: completable at most once per
// user, ever, while the event runs.
type CommunityQuest struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CommunityID  uuid.UUID `json:"community_id" db:"community_id"`
	Name         string    `json:"quest_name" db:"quest_name"`
	Description  string    `json:"quest_description" db:"quest_description"`
	PointsReward int       `json:"points_reward" db:"points_reward"`
	EventStart   time.Time `json:"event_start" db:"event_start"`
	EventEnd     time.Time `json:"event_end" db:"event_end"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// QuestWithCountdown adds the derived display fields for listings.
type QuestWithCountdown struct {
	CommunityQuest
	CommunityName string `json:"community_name"`
	Countdown     string `json:"countdown"`
	Completed     bool   `json:"completed"`
}

type QuestCompletion struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	CommunityQuestID uuid.UUID `json:"community_quest_id" db:"community_quest_id"`
	CompletedAt      time.Time `json:"completed_at" db:"completed_at"`
}
