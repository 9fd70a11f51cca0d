package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"starLifeAPI/internal/apperr"
	"starLifeAPI/internal/clock"
	"starLifeAPI/internal/metrics"
	"starLifeAPI/internal/notification"
	"starLifeAPI/internal/points"
	"starLifeAPI/internal/quest"
	"starLifeAPI/internal/tier"
	"starLifeAPI/internal/user"
)

type QuestService struct {
	db           *pgxpool.Pool
	clk          clock.Clock
	notifService *NotificationService
}

func NewQuestService(db *pgxpool.Pool, clk clock.Clock, notifService *NotificationService) *QuestService {
	return &QuestService{
		db:           db,
		clk:          clk,
		notifService: notifService,
	}
}

// GetQuests lists active quests with the caller's completion state for each
// quest's current period window.
func (s *QuestService) GetQuests(ctx context.Context, clerkID string) ([]*quest.QuestWithStatus, error) {
	u, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, false, nil)
	if err != nil {
		return nil, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	now := s.clk.Now()

	// One window start per quest type; the join below checks the right one
	// for each row.
	dailyStart, _ := quest.PeriodWindow(quest.TypeDaily, now)
	weeklyStart, _ := quest.PeriodWindow(quest.TypeWeekly, now)
	monthlyStart, _ := quest.PeriodWindow(quest.TypeMonthly, now)

	query := `
	SELECT
		q.id, q.quest_name, q.quest_description, q.quest_type, q.points_reward,
		q.is_active, q.created_at, q.updated_at,
		EXISTS (
			SELECT 1 FROM quest_completions qc
			WHERE qc.quest_id = q.id
			  AND qc.user_id = $1
			  AND qc.completed_at >= CASE q.quest_type
					WHEN 'daily' THEN $2::timestamptz
					WHEN 'weekly' THEN $3::timestamptz
					ELSE $4::timestamptz
				END
		) AS completed
	FROM quests q
	WHERE q.is_active = true
	  AND (q.owner_id IS NULL OR q.owner_id = $1)
	ORDER BY q.quest_type, q.created_at
	`

	rows, err := s.db.Query(ctx, query, u.ID, dailyStart, weeklyStart, monthlyStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quests: %w", err)
	}
	defer rows.Close()

	var quests []*quest.QuestWithStatus
	for rows.Next() {
		q := &quest.QuestWithStatus{}
		err := rows.Scan(
			&q.ID, &q.Name, &q.Description, &q.Type, &q.PointsReward,
			&q.IsActive, &q.CreatedAt, &q.UpdatedAt, &q.Completed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quest: %w", err)
		}
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quests: %w", err)
	}

	if quests == nil {
		quests = []*quest.QuestWithStatus{}
	}

	return quests, nil
}

// CompleteQuest records a completion, awards the points, and, when this
// completion finishes the whole daily set, advances the streak. Everything
// happens in one transaction under the user row lock, so a concurrent
// duplicate request serializes behind this one and fails the period check.
func (s *QuestService) CompleteQuest(ctx context.Context, clerkID string, questID uuid.UUID) (*quest.CompleteResult, error) {
	result := &quest.CompleteResult{}
	var milestone *tier.Benefit

	u, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, false, func(tx pgx.Tx, u *user.User) error {
		now := s.clk.Now()
		today := clock.DateOf(now)

		q := &quest.Quest{}
		err := tx.QueryRow(ctx, `
			SELECT id, quest_name, quest_description, quest_type, points_reward, is_active, created_at, updated_at
			FROM quests
			WHERE id = $1 AND is_active = true
			  AND (owner_id IS NULL OR owner_id = $2)
		`, questID, u.ID).Scan(
			&q.ID, &q.Name, &q.Description, &q.Type, &q.PointsReward,
			&q.IsActive, &q.CreatedAt, &q.UpdatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("quest not found")
			}
			return fmt.Errorf("failed to load quest: %w", err)
		}

		periodStart, err := quest.PeriodWindow(q.Type, now)
		if err != nil {
			return err
		}

		var alreadyDone bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM quest_completions
				WHERE user_id = $1 AND quest_id = $2 AND completed_at >= $3
			)
		`, u.ID, q.ID, periodStart).Scan(&alreadyDone)
		if err != nil {
			return fmt.Errorf("failed to check completion: %w", err)
		}
		if alreadyDone {
			return apperr.New(apperr.KindAlreadyCompletedThisPeriod,
				"quest already completed this %s", quest.PeriodName(q.Type))
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO quest_completions (id, user_id, quest_id, completed_at)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), u.ID, q.ID, now)
		if err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}

		u.Points += q.PointsReward
		u.WeeklyPoints += q.PointsReward
		result.PointsAdded = q.PointsReward

		if err := recordPointsHistory(ctx, tx, u.ID, q.PointsReward, points.ReasonQuest, u.AvailablePoints(), now); err != nil {
			return err
		}

		metrics.QuestCompletions.WithLabelValues(string(q.Type)).Inc()

		// Finishing the last open daily quest today advances the streak,
		// at most once per day. The set is whatever is active right now.
		if q.Type == quest.TypeDaily {
			var activeDaily, doneToday int
			err = tx.QueryRow(ctx, `
				SELECT
					(SELECT COUNT(*) FROM quests
					 WHERE quest_type = 'daily' AND is_active = true
					   AND (owner_id IS NULL OR owner_id = $1)),
					(SELECT COUNT(DISTINCT qc.quest_id)
					 FROM quest_completions qc
					 JOIN quests dq ON dq.id = qc.quest_id
					 WHERE qc.user_id = $1
					   AND dq.quest_type = 'daily' AND dq.is_active = true
					   AND (dq.owner_id IS NULL OR dq.owner_id = $1)
					   AND qc.completed_at >= $2)
			`, u.ID, periodStart).Scan(&activeDaily, &doneToday)
			if err != nil {
				return fmt.Errorf("failed to count daily completions: %w", err)
			}

			result.AllDailyComplete = activeDaily > 0 && doneToday >= activeDaily

			if result.AllDailyComplete && user.CanIncrementStreak(u.LastDailyCompletion, today) {
				u.Streak++
				u.LastDailyCompletion = &today
				result.StreakIncremented = true
				metrics.StreakIncrements.Inc()

				newTier := tier.ForStreak(u.Streak)
				if newTier.MinStreak == u.Streak {
					milestone = &newTier
				}
				u.Tier = newTier.Name

				_, err = tx.Exec(ctx, `
					UPDATE users
					SET streak = $2, last_daily_completion = $3, tier = $4, updated_at = NOW()
					WHERE id = $1
				`, u.ID, u.Streak, today, u.Tier)
				if err != nil {
					return fmt.Errorf("failed to advance streak: %w", err)
				}
			}
		}

		result.NewStreak = u.Streak

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
		return nil, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	if milestone != nil {
		go s.notifyMilestone(u.ID, u.Streak, milestone)
	}

	return result, nil
}

func (s *QuestService) notifyMilestone(userID uuid.UUID, streak int, reached *tier.Benefit) {
	req := &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.NotificationStreakMilestone,
		Title:   fmt.Sprintf("%s tier unlocked!", reached.Name),
		Message: fmt.Sprintf("Your %d-day streak just earned you %s tier and a %d%% store discount.", streak, reached.Name, reached.DiscountPercent),
		Data: map[string]any{
			"streak": streak,
			"tier":   reached.Name,
		},
	}
	if _, err := s.notifService.CreateNotification(context.Background(), req); err != nil {
		log.Printf("Failed to send milestone notification to %s: %v", userID, err)
	}
}

// SaveGeneratedQuests replaces the user's AI-generated quests with a fresh
// batch. Generated quests live in the same quests table, scoped by owner.
func (s *QuestService) SaveGeneratedQuests(ctx context.Context, userID uuid.UUID, quests []*quest.Quest) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE quests SET is_active = false, updated_at = NOW()
		WHERE owner_id = $1 AND is_active = true
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to retire old generated quests: %w", err)
	}

	for _, q := range quests {
		_, err = tx.Exec(ctx, `
			INSERT INTO quests (id, owner_id, quest_name, quest_description, quest_type, points_reward, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, true, NOW(), NOW())
		`, uuid.New(), userID, q.Name, q.Description, q.Type, q.PointsReward)
		if err != nil {
			return fmt.Errorf("failed to insert generated quest: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit generated quests: %w", err)
	}

	return nil
}

// ResetCompletions wipes the caller's completions and daily-streak stamp.
// Guarded by ENABLE_TEST_RESET; staging only.
func (s *QuestService) ResetCompletions(ctx context.Context, clerkID string) error {
	if os.Getenv("ENABLE_TEST_RESET") != "true" {
		return apperr.NotFound("not found")
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("user not found")
		}
		return fmt.Errorf("user lookup failed: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM quest_completions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET last_daily_completion = NULL, updated_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear daily stamp: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	log.Printf("Test reset: cleared quest completions for user %s", userID)
	return nil
}
