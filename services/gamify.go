package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"starLifeAPI/internal/apperr"
	"starLifeAPI/internal/clock"
	"starLifeAPI/internal/leaderboard"
	"starLifeAPI/internal/metrics"
	"starLifeAPI/internal/notification"
	"starLifeAPI/internal/points"
	"starLifeAPI/internal/user"
)

// userColumns is the full users projection shared by every service that
// locks a user row.
const userColumns = `id, clerk_id, email, username, image_url, points, spent_points,
	weekly_points, week_start, streak, last_login, last_daily_completion,
	tier, streak_freeze_available, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.ImageURL,
		&u.Points,
		&u.SpentPoints,
		&u.WeeklyPoints,
		&u.WeekStart,
		&u.Streak,
		&u.LastLogin,
		&u.LastDailyCompletion,
		&u.Tier,
		&u.StreakFreezeAvailable,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// lockUserByClerkID loads the caller's row under FOR UPDATE, serializing all
// check-then-act sequences for that user inside the surrounding transaction.
func lockUserByClerkID(ctx context.Context, tx pgx.Tx, clerkID string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE clerk_id = $1 FOR UPDATE`, userColumns)
	return scanUser(tx.QueryRow(ctx, query, clerkID))
}

// bonusAward records a weekly-bonus payout for post-commit notification.
type bonusAward struct {
	UserID   uuid.UUID
	Username string
	Rank     int
	Bonus    int
}

// lazyOutcome reports what the on-access evaluation changed.
type lazyOutcome struct {
	StreakWasReset bool
	RolledOver     bool
	BonusWinners   []bonusAward
}

// applyLazyChecks runs the two on-access evaluations from the access path:
// first the streak reset (a missed day zeroes the streak unless a freeze
// stamped today), then the weekly rollover. The rollover's bonus payout is
// guarded by a compare-and-set on the weekly_rollovers marker table so the
// top-5 bonuses are paid exactly once per week transition no matter how many
// users' accesses observe the transition concurrently.
//
// skipStreakReset is set only by UseStreakFreeze, whose entire purpose is to
// pre-empt the reset it would otherwise trigger.
func applyLazyChecks(ctx context.Context, tx pgx.Tx, clk clock.Clock, u *user.User, skipStreakReset bool) (*lazyOutcome, error) {
	now := clk.Now()
	today := clock.DateOf(now)
	outcome := &lazyOutcome{}
	changed := false

	if !skipStreakReset && user.ShouldResetStreak(u.LastLogin, u.LastDailyCompletion, today) {
		log.Printf("Streak reset for user %s: last login %v", u.ID, u.LastLogin)
		u.Streak = 0
		outcome.StreakWasReset = true
		metrics.StreakResets.Inc()
		changed = true
	}

	if u.LastLogin == nil || !clock.SameDay(*u.LastLogin, today) {
		u.LastLogin = &today
		changed = true
	}

	currentWeekStart := clock.StartOfWeek(now)
	if user.RolloverDue(u.WeekStart, now) {
		// First access ever has no finished week behind it, so no payout.
		if u.WeekStart != nil {
			won, err := claimRollover(ctx, tx, currentWeekStart, now)
			if err != nil {
				return nil, err
			}
			if won {
				winners, err := payWeeklyBonuses(ctx, tx, now)
				if err != nil {
					return nil, err
				}
				outcome.BonusWinners = winners
				metrics.WeeklyBonusPayouts.Inc()

				// The payout may have credited the locked user too;
				// keep the in-memory snapshot consistent.
				for _, w := range winners {
					if w.UserID == u.ID {
						u.Points += w.Bonus
					}
				}
			}
		}
		u.WeeklyPoints = 0
		u.WeekStart = &currentWeekStart
		outcome.RolledOver = true
		changed = true
	}

	if changed {
		_, err := tx.Exec(ctx, `
			UPDATE users
			SET streak = $2, last_login = $3, weekly_points = $4, week_start = $5, updated_at = NOW()
			WHERE id = $1
		`, u.ID, u.Streak, u.LastLogin, u.WeeklyPoints, u.WeekStart)
		if err != nil {
			return nil, fmt.Errorf("failed to persist lazy checks: %w", err)
		}
	}

	return outcome, nil
}

// claimRollover is the single-winner guard: only the transaction that
// inserts the marker row for this week start pays the bonuses. Losing
// transactions block on the unique index until the winner commits, then
// see a conflict and affect zero rows.
func claimRollover(ctx context.Context, tx pgx.Tx, weekStart, now time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO weekly_rollovers (week_start, completed_at)
		VALUES ($1, $2)
		ON CONFLICT (week_start) DO NOTHING
	`, weekStart, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim rollover: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// payWeeklyBonuses ranks all users by the finishing week's points and adds
// the fixed bonuses to their lifetime points (weekly counters are reset
// lazily by each user's own next access).
func payWeeklyBonuses(ctx context.Context, tx pgx.Tx, now time.Time) ([]bonusAward, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, username, weekly_points
		FROM users
		WHERE weekly_points > 0
		ORDER BY weekly_points DESC, id
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to rank weekly leaderboard: %w", err)
	}
	defer rows.Close()

	var winners []bonusAward
	for rows.Next() {
		var w bonusAward
		var weeklyPoints int
		if err := rows.Scan(&w.UserID, &w.Username, &weeklyPoints); err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		w.Rank = len(winners) + 1
		w.Bonus = leaderboard.WeeklyBonuses[len(winners)]
		winners = append(winners, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating winners: %w", err)
	}
	rows.Close()

	for _, w := range winners {
		var balanceAfter int
		err := tx.QueryRow(ctx, `
			UPDATE users
			SET points = points + $2, updated_at = NOW()
			WHERE id = $1
			RETURNING points - spent_points
		`, w.UserID, w.Bonus).Scan(&balanceAfter)
		if err != nil {
			return nil, fmt.Errorf("failed to award bonus to %s: %w", w.UserID, err)
		}
		if err := recordPointsHistory(ctx, tx, w.UserID, w.Bonus, points.ReasonWeeklyBonus, balanceAfter, now); err != nil {
			return nil, err
		}
		log.Printf("Weekly bonus: rank %d, %d points to %s", w.Rank, w.Bonus, w.Username)
	}

	return winners, nil
}

// withGamifiedUser is the access path every user-facing operation goes
// through: one transaction that locks the caller's row, runs the on-access
// evaluations, then hands the up-to-date user to fn. The returned user
// reflects whatever fn changed in memory.
func withGamifiedUser(ctx context.Context, db *pgxpool.Pool, clk clock.Clock, clerkID string, skipStreakReset bool, fn func(tx pgx.Tx, u *user.User) error) (*user.User, *lazyOutcome, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	u, err := lockUserByClerkID(ctx, tx, clerkID)
	if err != nil {
		return nil, nil, err
	}

	outcome, err := applyLazyChecks(ctx, tx, clk, u, skipStreakReset)
	if err != nil {
		return nil, nil, err
	}

	if fn != nil {
		if err := fn(tx, u); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return u, outcome, nil
}

// notifyBonusWinners fires weekly-bonus notifications after the paying
// transaction has committed.
func notifyBonusWinners(notifService *NotificationService, winners []bonusAward) {
	for _, w := range winners {
		req := &notification.CreateNotificationRequest{
			UserID:  w.UserID,
			Type:    notification.NotificationWeeklyBonus,
			Title:   "Weekly leaderboard bonus!",
			Message: fmt.Sprintf("You finished #%d this week and earned %d bonus points!", w.Rank, w.Bonus),
			Data: map[string]any{
				"rank":  w.Rank,
				"bonus": w.Bonus,
			},
		}
		if _, err := notifService.CreateNotification(context.Background(), req); err != nil {
			log.Printf("Failed to notify bonus winner %s: %v", w.UserID, err)
		}
	}
}

// recordPointsHistory appends one ledger row; every points mutation in the
// engine goes through here inside its own transaction.
func recordPointsHistory(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int, reason string, balanceAfter int, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO points_history (id, user_id, delta, reason, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), userID, delta, reason, balanceAfter, now)
	if err != nil {
		return fmt.Errorf("failed to record points history: %w", err)
	}
	return nil
}
