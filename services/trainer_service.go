package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"starLifeAPI/internal/apperr"
	"starLifeAPI/internal/clock"
	"starLifeAPI/internal/notification"
	"starLifeAPI/internal/quest"
	"starLifeAPI/internal/trainer"
)

// TrainerService talks to the external AI coach over HTTP. The coach only
// produces content; parsing failures or downtime fall back to the fixed
// default quests so quest generation never hard-fails.
type TrainerService struct {
	db           *pgxpool.Pool
	clk          clock.Clock
	questService *QuestService
	userService  *UserService
	notifService *NotificationService
	client       *http.Client
	baseURL      string
}

func NewTrainerService(db *pgxpool.Pool, clk clock.Clock, questService *QuestService, userService *UserService, notifService *NotificationService) *TrainerService {
	baseURL := os.Getenv("AI_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8001"
	}

	return &TrainerService{
		db:           db,
		clk:          clk,
		questService: questService,
		userService:  userService,
		notifService: notifService,
		client:       &http.Client{Timeout: 30 * time.Second},
		baseURL:      baseURL,
	}
}

// GenerateQuests asks the coach for a personalized quest batch, parses the
// reply, and saves the batch as the user's active generated quests.
func (s *TrainerService) GenerateQuests(ctx context.Context, clerkID string) (*trainer.GenerateResult, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	req := &trainer.GenerateRequest{
		UserInfo:       s.buildProfile(ctx, userID),
		PreviousQuests: s.recentQuestHistory(ctx, userID),
		NumQuests:      3,
	}

	result := s.callGenerate(ctx, req)

	saved := make([]*quest.Quest, 0, len(result.Quests))
	for _, g := range result.Quests {
		saved = append(saved, &quest.Quest{
			Name:         g.Title,
			Description:  g.Description,
			Type:         questTypeForDuration(g.DurationDays),
			PointsReward: g.Points,
		})
	}

	if err := s.questService.SaveGeneratedQuests(ctx, userID, saved); err != nil {
		return nil, err
	}

	go s.notifyQuestsGenerated(userID, len(saved))

	return result, nil
}

// Chat relays a free-form message to the coach, attaching today's health
// snapshot as context when one exists.
func (s *TrainerService) Chat(ctx context.Context, clerkID string, message string) (*trainer.ChatResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	chatCtx := map[string]any{}
	if m, err := s.userService.healthMetricForDate(ctx, userID, clock.DateOf(s.clk.Now())); err == nil && m != nil {
		chatCtx["today_health"] = map[string]any{
			"steps":          m.Steps,
			"heart_rate":     m.HeartRate,
			"sleep_hours":    m.SleepHours,
			"active_minutes": m.ActiveMinutes,
			"calories":       m.Calories,
		}
	}

	req := &trainer.ChatRequest{
		UserID:  userID.String(),
		Message: message,
		Context: chatCtx,
	}

	resp := &trainer.ChatResponse{}
	if err := s.post(ctx, "/chat", req, resp); err != nil {
		return nil, fmt.Errorf("coach unavailable: %w", err)
	}

	return resp, nil
}

// callGenerate hits the generator endpoint and parses the templated text.
// Any failure, network or parse, yields the default quest set.
func (s *TrainerService) callGenerate(ctx context.Context, req *trainer.GenerateRequest) *trainer.GenerateResult {
	resp := &trainer.GenerateResponse{}
	if err := s.post(ctx, "/generate-quests", req, resp); err != nil {
		log.Printf("Quest generation failed, using defaults: %v", err)
		return fallbackResult()
	}

	quests := trainer.ParseQuests(resp.Text)
	if len(quests) == 0 {
		log.Printf("Quest generation returned no parseable quests, using defaults")
		return fallbackResult()
	}

	return &trainer.GenerateResult{
		Quests:              quests,
		PersonalizedMessage: trainer.PersonalizedMessage(resp.Text),
		UsedFallback:        false,
	}
}

func fallbackResult() *trainer.GenerateResult {
	return &trainer.GenerateResult{
		Quests:              trainer.DefaultQuests(),
		PersonalizedMessage: "Here are some solid quests to keep you moving this week!",
		UsedFallback:        true,
	}
}

func (s *TrainerService) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("coach returned status %d", httpResp.StatusCode)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// buildProfile assembles the coach's view of the user: streak-derived
// fitness level plus the last week of health numbers.
func (s *TrainerService) buildProfile(ctx context.Context, userID uuid.UUID) trainer.UserProfile {
	profile := trainer.UserProfile{
		UserID:        userID.String(),
		FitnessLevel:  "beginner",
		Goals:         []string{"general_fitness"},
		AvailableTime: 30,
	}

	var streak int
	if err := s.db.QueryRow(ctx, `SELECT streak FROM users WHERE id = $1`, userID).Scan(&streak); err == nil {
		switch {
		case streak >= 90:
			profile.FitnessLevel = "advanced"
		case streak >= 30:
			profile.FitnessLevel = "intermediate"
		}
	}

	metrics, err := s.userService.recentHealthMetrics(ctx, userID, 7)
	if err != nil || len(metrics) == 0 {
		return profile
	}

	var steps, activeMinutes int
	var sleep float64
	for _, m := range metrics {
		steps += m.Steps
		activeMinutes += m.ActiveMinutes
		sleep += m.SleepHours
	}
	n := len(metrics)
	profile.HealthStats = map[string]any{
		"avg_daily_steps":    steps / n,
		"avg_active_minutes": activeMinutes / n,
		"avg_sleep_hours":    sleep / float64(n),
		"days_reported":      n,
	}

	return profile
}

// recentQuestHistory feeds the coach the last few generated quests and
// whether they were ever completed, so repeats get avoided.
func (s *TrainerService) recentQuestHistory(ctx context.Context, userID uuid.UUID) []trainer.PreviousQuest {
	rows, err := s.db.Query(ctx, `
		SELECT q.quest_name,
			   EXISTS (
				   SELECT 1 FROM quest_completions qc
				   WHERE qc.quest_id = q.id AND qc.user_id = $1
			   ) AS completed
		FROM quests q
		WHERE q.owner_id = $1
		ORDER BY q.created_at DESC
		LIMIT 5
	`, userID)
	if err != nil {
		log.Printf("Failed to load quest history for %s: %v", userID, err)
		return nil
	}
	defer rows.Close()

	var history []trainer.PreviousQuest
	for rows.Next() {
		var h trainer.PreviousQuest
		if err := rows.Scan(&h.QuestName, &h.Completed); err != nil {
			log.Printf("Failed to scan quest history: %v", err)
			return history
		}
		history = append(history, h)
	}
	return history
}

func (s *TrainerService) notifyQuestsGenerated(userID uuid.UUID, count int) {
	req := &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.NotificationQuestsGenerated,
		Title:   "New quests are ready!",
		Message: fmt.Sprintf("Your coach prepared %d new quests for you.", count),
		Data:    map[string]any{"count": count},
	}
	if _, err := s.notifService.CreateNotification(context.Background(), req); err != nil {
		log.Printf("Failed to send quests-generated notification to %s: %v", userID, err)
	}
}

// questTypeForDuration maps a generated quest's duration onto a period:
// single-day quests run daily, anything longer runs weekly.
func questTypeForDuration(days int) quest.QuestType {
	if days <= 1 {
		return quest.TypeDaily
	}
	return quest.TypeWeekly
}
