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
	"starLifeAPI/internal/health"
	"starLifeAPI/internal/leaderboard"
	"starLifeAPI/internal/points"
	"starLifeAPI/internal/tier"
	"starLifeAPI/internal/user"
)

type UserService struct {
	db           *pgxpool.Pool
	clk          clock.Clock
	notifService *NotificationService
}

func NewUserService(db *pgxpool.Pool, clk clock.Clock, notifService *NotificationService) *UserService {
	return &UserService{
		db:           db,
		clk:          clk,
		notifService: notifService,
	}
}

// CreateUser provisions a new user from the Clerk webhook. All gamification
// counters start at zero; the first quest access anchors the week.
func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	query := fmt.Sprintf(`
	INSERT INTO users (id, clerk_id, email, username, image_url, tier, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING %s
	`, userColumns)

	u, err := scanUser(s.db.QueryRow(
		ctx,
		query,
		uuid.New(),
		req.ClerkID,
		req.Email,
		req.Username,
		req.ImageURL,
		tier.Benefits[0].Name,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("Created user %s (%s)", u.Username, u.ClerkID)
	return u, nil
}

// GetUserByClerkID is the profile read. Like every user-facing operation it
// runs the on-access evaluations first, so a stale streak or a finished week
// is settled before the snapshot goes out.
func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	u, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, false, nil)
	if err != nil {
		return nil, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := fmt.Sprintf(`
	UPDATE users
	SET
		username = COALESCE(NULLIF($2, ''), username),
		image_url = COALESCE(NULLIF($3, ''), image_url),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING %s
	`, userColumns)

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID, req.Username, req.ImageURL))
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}

	return nil
}

// GetTierInfo derives the tier view from the current streak and persists the
// tier name so rows read outside the access path stay consistent.
func (s *UserService) GetTierInfo(ctx context.Context, clerkID string) (*user.TierInfo, error) {
	u, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, false, func(tx pgx.Tx, u *user.User) error {
		current := tier.ForStreak(u.Streak)
		if u.Tier != current.Name {
			u.Tier = current.Name
			_, err := tx.Exec(ctx, `UPDATE users SET tier = $2, updated_at = NOW() WHERE id = $1`, u.ID, u.Tier)
			if err != nil {
				return fmt.Errorf("failed to persist tier: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	current := tier.ForStreak(u.Streak)
	info := &user.TierInfo{
		TierName:        current.Name,
		CurrentStreak:   u.Streak,
		DiscountPercent: current.DiscountPercent,
		TierColor:       current.Color,
		TierIcon:        current.Icon,
	}

	if next, toGo := tier.Next(u.Streak); next != nil {
		info.NextTier = &next.Name
		info.StreaksToNextTier = &toGo
	}

	return info, nil
}

// GetLeaderboard returns the weekly top 10 plus the caller's own position.
// Users whose week_start lags the live week have simply not been seen this
// week yet and rank with zero points.
func (s *UserService) GetLeaderboard(ctx context.Context, clerkID string) (*leaderboard.Leaderboard, error) {
	u, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, false, nil)
	if err != nil {
		return nil, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	currentWeekStart := clock.StartOfWeek(s.clk.Now())

	query := `
	SELECT
		id AS user_id,
		username,
		image_url,
		CASE WHEN week_start = $1 THEN weekly_points ELSE 0 END AS weekly_points,
		streak,
		RANK() OVER (ORDER BY CASE WHEN week_start = $1 THEN weekly_points ELSE 0 END DESC) AS rank
	FROM users
	ORDER BY weekly_points DESC, username
	LIMIT 10
	`

	rows, err := s.db.Query(ctx, query, currentWeekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.Entry
	var userPosition *leaderboard.Entry

	for rows.Next() {
		entry := &leaderboard.Entry{}
		err := rows.Scan(
			&entry.UserID,
			&entry.Username,
			&entry.ImageURL,
			&entry.WeeklyPoints,
			&entry.Streak,
			&entry.Rank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		entries = append(entries, entry)

		if entry.UserID == u.ID {
			userPosition = entry
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	var totalUsers int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&totalUsers); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	// The caller may rank below the top 10.
	if userPosition == nil {
		rankQuery := `
		SELECT rank FROM (
			SELECT
				id,
				RANK() OVER (ORDER BY CASE WHEN week_start = $1 THEN weekly_points ELSE 0 END DESC) AS rank
			FROM users
		) ranked
		WHERE id = $2
		`
		var rank int
		err := s.db.QueryRow(ctx, rankQuery, currentWeekStart, u.ID).Scan(&rank)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to rank user: %w", err)
		}
		if err == nil {
			var imageURL *string
			if u.ImageURL != "" {
				imageURL = &u.ImageURL
			}
			userPosition = &leaderboard.Entry{
				UserID:       u.ID,
				Username:     u.Username,
				ImageURL:     imageURL,
				WeeklyPoints: u.WeeklyPoints,
				Streak:       u.Streak,
				Rank:         rank,
			}
		}
	}

	return &leaderboard.Leaderboard{
		Entries:      entries,
		UserPosition: userPosition,
		TotalUsers:   totalUsers,
	}, nil
}

// GetPointsHistory lists the most recent ledger entries, newest first.
func (s *UserService) GetPointsHistory(ctx context.Context, clerkID string, limit int) ([]*points.HistoryEntry, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, delta, reason, balance_after, created_at
		FROM points_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch points history: %w", err)
	}
	defer rows.Close()

	var entries []*points.HistoryEntry
	for rows.Next() {
		entry := &points.HistoryEntry{}
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Delta, &entry.Reason, &entry.BalanceAfter, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	if entries == nil {
		entries = []*points.HistoryEntry{}
	}

	return entries, nil
}

// RecordHealthMetric upserts today's health snapshot. One row per user per
// day; repeated syncs from the phone overwrite the earlier numbers.
func (s *UserService) RecordHealthMetric(ctx context.Context, clerkID string, req *health.RecordMetricRequest) (*health.Metric, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	today := clock.DateOf(s.clk.Now())

	query := `
		INSERT INTO health_metrics (id, user_id, steps, heart_rate, sleep_hours, active_minutes, calories, metric_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id, metric_date)
		DO UPDATE SET
			steps = $3,
			heart_rate = $4,
			sleep_hours = $5,
			active_minutes = $6,
			calories = $7
		RETURNING id, user_id, steps, heart_rate, sleep_hours, active_minutes, calories, metric_date, created_at
	`

	m := &health.Metric{}
	err = s.db.QueryRow(
		ctx, query,
		uuid.New(), userID, req.Steps, req.HeartRate, req.SleepHours, req.ActiveMinutes, req.Calories, today,
	).Scan(
		&m.ID, &m.UserID, &m.Steps, &m.HeartRate, &m.SleepHours, &m.ActiveMinutes, &m.Calories, &m.MetricDate, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record health metric: %w", err)
	}

	return m, nil
}

// GetTodayHealthMetric returns today's snapshot, nil when none was synced.
func (s *UserService) GetTodayHealthMetric(ctx context.Context, clerkID string) (*health.Metric, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	return s.healthMetricForDate(ctx, userID, clock.DateOf(s.clk.Now()))
}

// GetLatestHealthMetric returns the most recent day with data, or nil when
// the user has never recorded one.
func (s *UserService) GetLatestHealthMetric(ctx context.Context, clerkID string) (*health.Metric, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	m := &health.Metric{}
	err = s.db.QueryRow(ctx, `
		SELECT id, user_id, steps, heart_rate, sleep_hours, active_minutes, calories, metric_date, created_at
		FROM health_metrics
		WHERE user_id = $1
		ORDER BY metric_date DESC
		LIMIT 1
	`, userID).Scan(
		&m.ID, &m.UserID, &m.Steps, &m.HeartRate, &m.SleepHours, &m.ActiveMinutes, &m.Calories, &m.MetricDate, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get health metric: %w", err)
	}
	return m, nil
}

func (s *UserService) healthMetricForDate(ctx context.Context, userID uuid.UUID, date time.Time) (*health.Metric, error) {
	m := &health.Metric{}
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, steps, heart_rate, sleep_hours, active_minutes, calories, metric_date, created_at
		FROM health_metrics
		WHERE user_id = $1 AND metric_date = $2
	`, userID, date).Scan(
		&m.ID, &m.UserID, &m.Steps, &m.HeartRate, &m.SleepHours, &m.ActiveMinutes, &m.Calories, &m.MetricDate, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get health metric: %w", err)
	}
	return m, nil
}

// recentHealthMetrics feeds the AI trainer context.
func (s *UserService) recentHealthMetrics(ctx context.Context, userID uuid.UUID, days int) ([]*health.Metric, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, steps, heart_rate, sleep_hours, active_minutes, calories, metric_date, created_at
		FROM health_metrics
		WHERE user_id = $1
		ORDER BY metric_date DESC
		LIMIT $2
	`, userID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch health metrics: %w", err)
	}
	defer rows.Close()

	var metrics []*health.Metric
	for rows.Next() {
		m := &health.Metric{}
		err := rows.Scan(&m.ID, &m.UserID, &m.Steps, &m.HeartRate, &m.SleepHours, &m.ActiveMinutes, &m.Calories, &m.MetricDate, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan health metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
