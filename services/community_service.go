package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"starLifeAPI/internal/apperr"
	"starLifeAPI/internal/clock"
	"starLifeAPI/internal/community"
	"starLifeAPI/internal/points"
	"starLifeAPI/internal/user"
)

type CommunityService struct {
	db           *pgxpool.Pool
	clk          clock.Clock
	notifService *NotificationService
}

func NewCommunityService(db *pgxpool.Pool, clk clock.Clock, notifService *NotificationService) *CommunityService {
	return &CommunityService{
		db:           db,
		clk:          clk,
		notifService: notifService,
	}
}

func (s *CommunityService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperr.NotFound("user not found")
		}
		return uuid.Nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return userID, nil
}

// GetCommunities lists all communities with the caller's membership flag.
func (s *CommunityService) GetCommunities(ctx context.Context, clerkID string) ([]*community.CommunityWithMembership, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		c.id, c.name, c.description, c.member_count, c.created_at,
		EXISTS (
			SELECT 1 FROM community_members cm
			WHERE cm.community_id = c.id AND cm.user_id = $1
		) AS joined
	FROM communities c
	ORDER BY c.member_count DESC, c.name
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch communities: %w", err)
	}
	defer rows.Close()

	var result []*community.CommunityWithMembership
	for rows.Next() {
		c := &community.CommunityWithMembership{}
		err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.MemberCount, &c.CreatedAt, &c.Joined)
		if err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating communities: %w", err)
	}

	if result == nil {
		result = []*community.CommunityWithMembership{}
	}

	return result, nil
}

// JoinCommunity adds the membership and bumps the cached member count in the
// same transaction. The unique index on (community_id, user_id) makes a
// double join lose cleanly.
func (s *CommunityService) JoinCommunity(ctx context.Context, clerkID string, communityID uuid.UUID) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM communities WHERE id = $1)`, communityID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check community: %w", err)
	}
	if !exists {
		return apperr.NotFound("community not found")
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO community_members (id, community_id, user_id, joined_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (community_id, user_id) DO NOTHING
	`, uuid.New(), communityID, userID)
	if err != nil {
		return fmt.Errorf("failed to join community: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindAlreadyJoined, "already a member of this community")
	}

	_, err = tx.Exec(ctx, `UPDATE communities SET member_count = member_count + 1 WHERE id = $1`, communityID)
	if err != nil {
		return fmt.Errorf("failed to update member count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit join: %w", err)
	}

	log.Printf("User %s joined community %s", userID, communityID)
	return nil
}

// LeaveCommunity is the inverse of JoinCommunity. Past quest completions in
// the community survive; membership gates future completions only.
func (s *CommunityService) LeaveCommunity(ctx context.Context, clerkID string, communityID uuid.UUID) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM community_members WHERE community_id = $1 AND user_id = $2
	`, communityID, userID)
	if err != nil {
		return fmt.Errorf("failed to leave community: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotAMember, "not a member of this community")
	}

	_, err = tx.Exec(ctx, `
		UPDATE communities SET member_count = GREATEST(member_count - 1, 0) WHERE id = $1
	`, communityID)
	if err != nil {
		return fmt.Errorf("failed to update member count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit leave: %w", err)
	}

	return nil
}

// GetCommunityQuests lists live and upcoming event quests across the
// caller's communities, with a display countdown. Ended events drop out.
func (s *CommunityService) GetCommunityQuests(ctx context.Context, clerkID string) ([]*community.QuestWithCountdown, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()

	query := `
	SELECT
		cq.id, cq.community_id, cq.quest_name, cq.quest_description,
		cq.points_reward, cq.event_start, cq.event_end, cq.created_at,
		c.name AS community_name,
		EXISTS (
			SELECT 1 FROM community_quest_completions cc
			WHERE cc.community_quest_id = cq.id AND cc.user_id = $1
		) AS completed
	FROM community_quests cq
	JOIN communities c ON c.id = cq.community_id
	JOIN community_members cm ON cm.community_id = cq.community_id AND cm.user_id = $1
	WHERE cq.event_end >= $2
	ORDER BY cq.event_start, cq.quest_name
	`

	rows, err := s.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch community quests: %w", err)
	}
	defer rows.Close()

	var quests []*community.QuestWithCountdown
	for rows.Next() {
		q := &community.QuestWithCountdown{}
		err := rows.Scan(
			&q.ID, &q.CommunityID, &q.Name, &q.Description,
			&q.PointsReward, &q.EventStart, &q.EventEnd, &q.CreatedAt,
			&q.CommunityName, &q.Completed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan community quest: %w", err)
		}
		q.Countdown = community.Countdown(now, q.EventStart, q.EventEnd)
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating community quests: %w", err)
	}

	if quests == nil {
		quests = []*community.QuestWithCountdown{}
	}

	return quests, nil
}

// CompleteCommunityQuest awards an event quest once per user, ever. The
// event must be running and the caller must still be a member.
func (s *CommunityService) CompleteCommunityQuest(ctx context.Context, clerkID string, questID uuid.UUID) (int, error) {
	var awarded int

	_, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, false, func(tx pgx.Tx, u *user.User) error {
		now := s.clk.Now()

		q := &community.CommunityQuest{}
		err := tx.QueryRow(ctx, `
			SELECT id, community_id, quest_name, quest_description, points_reward, event_start, event_end, created_at
			FROM community_quests
			WHERE id = $1
		`, questID).Scan(
			&q.ID, &q.CommunityID, &q.Name, &q.Description,
			&q.PointsReward, &q.EventStart, &q.EventEnd, &q.CreatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("community quest not found")
			}
			return fmt.Errorf("failed to load community quest: %w", err)
		}

		var member bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM community_members WHERE community_id = $1 AND user_id = $2
			)
		`, q.CommunityID, u.ID).Scan(&member)
		if err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if !member {
			return apperr.New(apperr.KindNotAMember, "not a member of this community")
		}

		if now.Before(q.EventStart) || now.After(q.EventEnd) {
			return apperr.New(apperr.KindNotAvailable, "event is not running")
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO community_quest_completions (id, user_id, community_quest_id, completed_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, community_quest_id) DO NOTHING
		`, uuid.New(), u.ID, q.ID, now)
		if err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.KindAlreadyCompleted, "community quest already completed")
		}

		u.Points += q.PointsReward
		u.WeeklyPoints += q.PointsReward
		awarded = q.PointsReward

		if err := recordPointsHistory(ctx, tx, u.ID, q.PointsReward, points.ReasonCommunityQuest, u.AvailablePoints(), now); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE users
			SET points = points + $2, weekly_points = weekly_points + $2, updated_at = NOW()
			WHERE id = $1
		`, u.ID, q.PointsReward)
		if err != nil {
			return fmt.Errorf("failed to award points: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	return awarded, nil
}
