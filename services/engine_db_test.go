package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starLifeAPI/internal/apperr"
	"starLifeAPI/internal/clock"
	"starLifeAPI/internal/tier"
)

// These tests exercise the real transactional paths (row locks, rollover
// CAS, period ledger) and need a provisioned schema. They skip unless
// TEST_DATABASE_URL points at a dedicated test database.
func setupEngineDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping transactional tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "connect to test database")
	require.NoError(t, pool.Ping(ctx), "ping test database")

	_, err = pool.Exec(ctx, `
		TRUNCATE users, quests, quest_completions, weekly_rollovers,
			points_history, store_products, purchases,
			notifications, device_tokens
		CASCADE
	`)
	require.NoError(t, err, "reset test tables")

	t.Cleanup(pool.Close)
	return pool
}

func insertTestUser(t *testing.T, pool *pgxpool.Pool, clerkID string, mutate func(cols map[string]any)) uuid.UUID {
	t.Helper()

	cols := map[string]any{
		"points":                  0,
		"spent_points":            0,
		"weekly_points":           0,
		"week_start":              nil,
		"streak":                  0,
		"last_login":              nil,
		"last_daily_completion":   nil,
		"streak_freeze_available": false,
	}
	if mutate != nil {
		mutate(cols)
	}

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (
			id, clerk_id, email, username, image_url, points, spent_points,
			weekly_points, week_start, streak, last_login, last_daily_completion,
			tier, streak_freeze_available, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, '', $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`,
		id, clerkID, clerkID+"@example.com", clerkID,
		cols["points"], cols["spent_points"], cols["weekly_points"], cols["week_start"],
		cols["streak"], cols["last_login"], cols["last_daily_completion"],
		tier.Benefits[0].Name, cols["streak_freeze_available"],
	)
	require.NoError(t, err, "insert test user")
	return id
}

func insertDailyQuest(t *testing.T, pool *pgxpool.Pool, name string, reward int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO quests (id, owner_id, quest_name, quest_description, quest_type, points_reward, is_active, created_at, updated_at)
		VALUES ($1, NULL, $2, '', 'daily', $3, true, NOW(), NOW())
	`, id, name, reward)
	require.NoError(t, err, "insert daily quest")
	return id
}

func testNotificationService(t *testing.T, pool *pgxpool.Pool) *NotificationService {
	t.Helper()
	svc := NewNotificationService(pool)
	svc.SetPushProvider(&MockPushProvider{})
	t.Cleanup(svc.Stop)
	return svc
}

func TestCompleteQuestRejectsSameDayDuplicate(t *testing.T) {
	pool := setupEngineDB(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC) // Wednesday
	clk := clock.Fixed{T: now}
	questService := NewQuestService(pool, clk, testNotificationService(t, pool))

	clerkID := "user_dup_check"
	weekStart := clock.StartOfWeek(now)
	today := clock.DateOf(now)
	userID := insertTestUser(t, pool, clerkID, func(cols map[string]any) {
		cols["week_start"] = weekStart
		cols["last_login"] = today
	})
	questID := insertDailyQuest(t, pool, "Drink 2L of water", 50)

	result, err := questService.CompleteQuest(ctx, clerkID, questID)
	require.NoError(t, err)
	assert.Equal(t, 50, result.PointsAdded)

	_, err = questService.CompleteQuest(ctx, clerkID, questID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAlreadyCompletedThisPeriod, apperr.KindOf(err))

	// The rejected attempt must leave no trace: one completion row, one
	// points credit.
	var completions, pts int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quest_completions WHERE user_id = $1 AND quest_id = $2`,
		userID, questID).Scan(&completions))
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT points FROM users WHERE id = $1`, userID).Scan(&pts))
	assert.Equal(t, 1, completions)
	assert.Equal(t, 50, pts)
}

func TestCompleteQuestAdvancesStreakOncePerDay(t *testing.T) {
	pool := setupEngineDB(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	clk := clock.Fixed{T: now}
	questService := NewQuestService(pool, clk, testNotificationService(t, pool))

	clerkID := "user_streak_check"
	weekStart := clock.StartOfWeek(now)
	today := clock.DateOf(now)
	userID := insertTestUser(t, pool, clerkID, func(cols map[string]any) {
		cols["week_start"] = weekStart
		cols["last_login"] = today
		cols["streak"] = 4
	})

	questIDs := []uuid.UUID{
		insertDailyQuest(t, pool, "Walk 8000 steps", 50),
		insertDailyQuest(t, pool, "Stretch for 10 minutes", 30),
		insertDailyQuest(t, pool, "Sleep 8 hours", 40),
	}

	// The first two completions leave the daily set open.
	for _, id := range questIDs[:2] {
		result, err := questService.CompleteQuest(ctx, clerkID, id)
		require.NoError(t, err)
		assert.False(t, result.StreakIncremented)
		assert.Equal(t, 4, result.NewStreak)
	}

	// The last one closes it and advances the streak.
	result, err := questService.CompleteQuest(ctx, clerkID, questIDs[2])
	require.NoError(t, err)
	assert.True(t, result.AllDailyComplete)
	assert.True(t, result.StreakIncremented)
	assert.Equal(t, 5, result.NewStreak)

	// A quest added later can re-close the set the same day, but the
	// once-per-day guard must hold the streak.
	lateQuest := insertDailyQuest(t, pool, "Evening walk", 20)
	result, err = questService.CompleteQuest(ctx, clerkID, lateQuest)
	require.NoError(t, err)
	assert.True(t, result.AllDailyComplete)
	assert.False(t, result.StreakIncremented)
	assert.Equal(t, 5, result.NewStreak)

	var streak int
	var lastDaily *time.Time
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT streak, last_daily_completion FROM users WHERE id = $1`, userID).Scan(&streak, &lastDaily))
	assert.Equal(t, 5, streak)
	require.NotNil(t, lastDaily)
	assert.True(t, clock.SameDay(*lastDaily, today))
}

func TestWeeklyRolloverPaysBonusesExactlyOnce(t *testing.T) {
	pool := setupEngineDB(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) // Monday, new week
	clk := clock.Fixed{T: now}
	notifService := testNotificationService(t, pool)
	userService := NewUserService(pool, clk, notifService)

	lastWeek := clock.StartOfWeek(now).AddDate(0, 0, -7)
	insertTestUser(t, pool, "user_week_leader", func(cols map[string]any) {
		cols["weekly_points"] = 120
		cols["week_start"] = lastWeek
	})
	insertTestUser(t, pool, "user_week_second", func(cols map[string]any) {
		cols["weekly_points"] = 80
		cols["week_start"] = lastWeek
	})

	// The first access of the new week pays the finished week's bonuses.
	leader, err := userService.GetUserByClerkID(ctx, "user_week_leader")
	require.NoError(t, err)
	assert.Equal(t, 500, leader.Points, "rank 1 bonus")
	assert.Equal(t, 0, leader.WeeklyPoints, "weekly counter resets")
	require.NotNil(t, leader.WeekStart)
	assert.True(t, leader.WeekStart.Equal(clock.StartOfWeek(now)))

	// The runner-up's own first access observes the same transition but
	// must not pay again; it only resets their weekly counter.
	runnerUp, err := userService.GetUserByClerkID(ctx, "user_week_second")
	require.NoError(t, err)
	assert.Equal(t, 300, runnerUp.Points, "rank 2 bonus paid by the first rollover, not doubled")
	assert.Equal(t, 0, runnerUp.WeeklyPoints)

	var markers int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM weekly_rollovers WHERE week_start = $1`,
		clock.StartOfWeek(now)).Scan(&markers))
	assert.Equal(t, 1, markers, "one marker per week transition")

	var bonusRows int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM points_history WHERE reason = 'weekly_bonus'`).Scan(&bonusRows))
	assert.Equal(t, 2, bonusRows, "one ledger row per winner")

	// A late transaction claiming the same week sees the marker and loses.
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	won, err := claimRollover(ctx, tx, clock.StartOfWeek(now), now)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestPurchaseInactiveProductIsNotFound(t *testing.T) {
	pool := setupEngineDB(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	clk := clock.Fixed{T: now}
	storeService := NewStoreService(pool, clk, testNotificationService(t, pool))

	clerkID := "user_store_check"
	insertTestUser(t, pool, clerkID, func(cols map[string]any) {
		cols["week_start"] = clock.StartOfWeek(now)
		cols["last_login"] = clock.DateOf(now)
	})

	productID := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO store_products (id, item_key, name, description, category, base_price, is_active, created_at, updated_at)
		VALUES ($1, 'retired_shaker', 'Retired Shaker', '', 'gear', 19.99, false, NOW(), NOW())
	`, productID)
	require.NoError(t, err)

	_, err = storeService.PurchaseProduct(ctx, clerkID, productID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err),
		fmt.Sprintf("inactive product must be indistinguishable from absent, got kind %q", apperr.KindOf(err)))

	var purchases int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&purchases))
	assert.Equal(t, 0, purchases)
}
