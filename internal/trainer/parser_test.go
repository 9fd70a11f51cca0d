package trainer

import (
	"strings"
	"testing"
)

const sampleResponse = `Here are your quests!

QUEST 1:
Title: Morning Mile
Description: Run one mile before 9am for 5 days
Difficulty: Medium
Category: Cardio
Target Value: 5
Target Unit: days
Duration Days: 5
Points: 60
Motivational Message: Rise and grind!

QUEST 2:
Title: Flex Friday
Description: 20 minutes of stretching
Difficulty: Easy
Category: Flexibility
Target Value: 20
Target Unit: minutes
Duration Days: 1
Points: 20
Motivational Message: Loosen up!

PERSONALIZED MESSAGE:
You crushed last week. Keep the momentum going!`

func TestParseQuests(t *testing.T) {
	quests := ParseQuests(sampleResponse)
	if len(quests) != 2 {
		t.Fatalf("parsed %d quests, want 2", len(quests))
	}

	first := quests[0]
	if first.Title != "Morning Mile" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Difficulty != "medium" || first.Category != "cardio" {
		t.Errorf("difficulty/category not lowercased: %s/%s", first.Difficulty, first.Category)
	}
	if first.TargetValue != 5 || first.Points != 60 || first.DurationDays != 5 {
		t.Errorf("numeric fields wrong: %+v", first)
	}

	if quests[1].DurationDays != 1 {
		t.Errorf("second quest duration = %d, want 1", quests[1].DurationDays)
	}
}

func TestParseQuestsSkipsIncompleteBlocks(t *testing.T) {
	text := "QUEST 1:\nDifficulty: hard\nPoints: 10\n\nQUEST 2:\nTitle: Real One\nDescription: does things\n"
	quests := ParseQuests(text)
	if len(quests) != 1 || quests[0].Title != "Real One" {
		t.Fatalf("expected only the complete block, got %+v", quests)
	}
}

func TestParseQuestsDefaults(t *testing.T) {
	text := "QUEST 1:\nTitle: Bare\nDescription: minimal block\n"
	quests := ParseQuests(text)
	if len(quests) != 1 {
		t.Fatal("expected one quest")
	}
	q := quests[0]
	if q.Difficulty != "medium" || q.Category != "hybrid" || q.Points != 50 || q.DurationDays != 7 {
		t.Errorf("defaults not applied: %+v", q)
	}
}

func TestParseQuestsGarbage(t *testing.T) {
	if quests := ParseQuests("the model refused to answer"); quests != nil {
		t.Errorf("expected nil for garbage, got %+v", quests)
	}
}

func TestPersonalizedMessage(t *testing.T) {
	if msg := PersonalizedMessage(sampleResponse); !strings.HasPrefix(msg, "You crushed last week") {
		t.Errorf("unexpected message: %q", msg)
	}
	if msg := PersonalizedMessage("no marker here"); msg == "" {
		t.Error("expected a fallback message")
	}
}

func TestDefaultQuests(t *testing.T) {
	defaults := DefaultQuests()
	if len(defaults) != 3 {
		t.Fatalf("default set size = %d, want 3", len(defaults))
	}
	for _, q := range defaults {
		if q.Title == "" || q.Points <= 0 {
			t.Errorf("invalid default quest: %+v", q)
		}
	}
}
