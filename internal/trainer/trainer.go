// Package trainer integrates the external AI fitness-coach service. The
// generator returns candidate quests in a fixed textual template which is
// parsed here; the generator is advisory content production only and never
// participates in engine state decisions.
package trainer

import "time"

// GeneratedQuest is one parsed candidate from the generator's response.
type GeneratedQuest struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	Difficulty          string `json:"difficulty"`
	Category            string `json:"category"`
	TargetValue         int    `json:"target_value"`
	TargetUnit          string `json:"target_unit"`
	DurationDays        int    `json:"duration_days"`
	Points              int    `json:"points"`
	MotivationalMessage string `json:"motivational_message"`
}

type UserProfile struct {
	UserID        string         `json:"user_id"`
	FitnessLevel  string         `json:"fitness_level"`
	Goals         []string       `json:"goals"`
	AvailableTime int            `json:"available_time"`
	HealthStats   map[string]any `json:"health_stats,omitempty"`
}

type PreviousQuest struct {
	QuestName string `json:"quest_name"`
	Completed bool   `json:"completed"`
}

type GenerateRequest struct {
	UserInfo       UserProfile     `json:"user_info"`
	PreviousQuests []PreviousQuest `json:"previous_quests"`
	NumQuests      int             `json:"num_quests"`
}

// GenerateResponse is the raw generator reply: free text in the QUEST
// template plus a personalized message.
type GenerateResponse struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatRequest struct {
	UserID  string         `json:"user_id"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

type ChatResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

type GenerateResult struct {
	Quests              []GeneratedQuest `json:"quests"`
	PersonalizedMessage string           `json:"personalized_message"`
	UsedFallback        bool             `json:"used_fallback"`
}
