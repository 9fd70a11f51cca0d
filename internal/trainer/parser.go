package trainer

import (
	"strconv"
	"strings"
)

const personalizedMarker = "PERSONALIZED MESSAGE:"

// ParseQuests extracts quests from the generator's fixed textual template:
//
//	QUEST 1:
//	Title: ...
//	Description: ...
//	Difficulty: ...
//	Category: ...
//	Target Value: ...
//	Target Unit: ...
//	Duration Days: ...
//	Points: ...
//	Motivational Message: ...
//
// Blocks missing a title or description are skipped. A response that yields
// zero valid quests is the caller's cue to fall back to DefaultQuests.
func ParseQuests(text string) []GeneratedQuest {
	var quests []GeneratedQuest

	blocks := strings.Split(text, "QUEST ")
	if len(blocks) < 2 {
		return nil
	}

	for _, block := range blocks[1:] {
		if idx := strings.Index(block, personalizedMarker); idx >= 0 {
			block = block[:idx]
		}

		fields := make(map[string]string)
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
			fields[key] = strings.TrimSpace(value)
		}

		if fields["title"] == "" || fields["description"] == "" {
			continue
		}

		quests = append(quests, GeneratedQuest{
			Title:               fields["title"],
			Description:         fields["description"],
			Difficulty:          strings.ToLower(defaultStr(fields["difficulty"], "medium")),
			Category:            strings.ToLower(defaultStr(fields["category"], "hybrid")),
			TargetValue:         defaultInt(fields["target_value"], 1),
			TargetUnit:          defaultStr(fields["target_unit"], "sessions"),
			DurationDays:        defaultInt(fields["duration_days"], 7),
			Points:              defaultInt(fields["points"], 50),
			MotivationalMessage: defaultStr(fields["motivational_message"], "You got this!"),
		})
	}

	return quests
}

// PersonalizedMessage extracts the coach's closing message, with a generic
// fallback when the marker is absent.
func PersonalizedMessage(text string) string {
	if _, after, ok := strings.Cut(text, personalizedMarker); ok {
		if msg := strings.TrimSpace(after); msg != "" {
			return msg
		}
	}
	return "Great job on your fitness journey! These new quests are designed just for you."
}

// DefaultQuests is the fixed fallback set used when parsing yields nothing.
func DefaultQuests() []GeneratedQuest {
	return []GeneratedQuest{
		{
			Title:               "10K Steps Daily",
			Description:         "Walk or run 10,000 steps every day this week",
			Difficulty:          "easy",
			Category:            "cardio",
			TargetValue:         70000,
			TargetUnit:          "steps",
			DurationDays:        7,
			Points:              50,
			MotivationalMessage: "Every step counts! Let's get moving!",
		},
		{
			Title:               "Hydration Hero",
			Description:         "Drink 8 glasses of water daily for 5 days",
			Difficulty:          "easy",
			Category:            "mindfulness",
			TargetValue:         5,
			TargetUnit:          "days",
			DurationDays:        5,
			Points:              30,
			MotivationalMessage: "Stay hydrated, stay healthy!",
		},
		{
			Title:               "Strength Builder",
			Description:         "Complete 3 strength training sessions this week",
			Difficulty:          "medium",
			Category:            "strength",
			TargetValue:         3,
			TargetUnit:          "sessions",
			DurationDays:        7,
			Points:              60,
			MotivationalMessage: "Build that strength! You're stronger than you think!",
		},
	}
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultInt(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
