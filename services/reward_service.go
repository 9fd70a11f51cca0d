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
	"starLifeAPI/internal/points"
	"starLifeAPI/internal/reward"
	"starLifeAPI/internal/user"
)

type RewardService struct {
	db           *pgxpool.Pool
	clk          clock.Clock
	notifService *NotificationService
}

func NewRewardService(db *pgxpool.Pool, clk clock.Clock, notifService *NotificationService) *RewardService {
	return &RewardService{
		db:           db,
		clk:          clk,
		notifService: notifService,
	}
}

func (s *RewardService) GetRewards(ctx context.Context) ([]*reward.Reward, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, reward_name, reward_description, points_cost, is_active, created_at
		FROM rewards
		WHERE is_active = true
		ORDER BY points_cost
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*reward.Reward
	for rows.Next() {
		r := &reward.Reward{}
		err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.PointsCost, &r.IsActive, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rewards: %w", err)
	}

	if rewards == nil {
		rewards = []*reward.Reward{}
	}

	return rewards, nil
}

// ClaimReward spends points on a reward. Spending accrues in spent_points;
// lifetime points are never decremented, so streak and leaderboard math stay
// untouched. The row lock serializes concurrent claims against the balance.
func (s *RewardService) ClaimReward(ctx context.Context, clerkID string, rewardID uuid.UUID) (*reward.ClaimResult, error) {
	result := &reward.ClaimResult{}

	_, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, false, func(tx pgx.Tx, u *user.User) error {
		now := s.clk.Now()

		r := &reward.Reward{}
		err := tx.QueryRow(ctx, `
			SELECT id, reward_name, reward_description, points_cost, is_active, created_at
			FROM rewards
			WHERE id = $1 AND is_active = true
		`, rewardID).Scan(&r.ID, &r.Name, &r.Description, &r.PointsCost, &r.IsActive, &r.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("reward not found")
			}
			return fmt.Errorf("failed to load reward: %w", err)
		}

		if u.AvailablePoints() < r.PointsCost {
			return apperr.New(apperr.KindInsufficientPoints,
				"need %d points, have %d", r.PointsCost, u.AvailablePoints())
		}

		u.SpentPoints += r.PointsCost

		_, err = tx.Exec(ctx, `
			UPDATE users SET spent_points = spent_points + $2, updated_at = NOW() WHERE id = $1
		`, u.ID, r.PointsCost)
		if err != nil {
			return fmt.Errorf("failed to spend points: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reward_claims (id, user_id, reward_id, claimed_at)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), u.ID, r.ID, now)
		if err != nil {
			return fmt.Errorf("failed to record claim: %w", err)
		}

		if err := recordPointsHistory(ctx, tx, u.ID, -r.PointsCost, points.ReasonRewardClaim, u.AvailablePoints(), now); err != nil {
			return err
		}

		result.NewPoints = u.AvailablePoints()
		result.RewardName = r.Name

		log.Printf("User %s claimed reward %q for %d points", u.ID, r.Name, r.PointsCost)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	return result, nil
}
