package adaptive

import (
	"math"
	"testing"

	"phonicsquest/internal/models"
)

func TestScaleDifficulty(t *testing.T) {
	base := models.DefaultSettings()

	tests := []struct {
		name       string
		streak     int
		wantRate   float64
		wantSimple bool
	}{
		{"no errors", 0, 1.0, false},
		{"one error", 1, 0.8, false},
		{"two errors", 2, 0.8, false},
		{"three errors", 3, 0.6, true},
		{"many errors", 7, 0.6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleDifficulty(base, tt.streak)
			if math.Abs(got.SpeechRate-tt.wantRate) > 1e-9 {
				t.Errorf("SpeechRate = %v, want %v", got.SpeechRate, tt.wantRate)
			}
			if got.SimplifiedUI != tt.wantSimple {
				t.Errorf("SimplifiedUI = %v, want %v", got.SimplifiedUI, tt.wantSimple)
			}
		})
	}
}

func TestScaleDifficultyUsesBaseline(t *testing.T) {
	base := models.DefaultSettings()
	base.SpeechRate = 0.5

	// Bands are multiples of the configured baseline, never of each other.
	if got := ScaleDifficulty(base, 3).SpeechRate; math.Abs(got-0.3) > 1e-9 {
		t.Errorf("SpeechRate = %v, want 0.3", got)
	}

	// A zero baseline normalizes to the default before scaling.
	base.SpeechRate = 0
	if got := ScaleDifficulty(base, 1).SpeechRate; math.Abs(got-0.8) > 1e-9 {
		t.Errorf("SpeechRate from zero baseline = %v, want 0.8", got)
	}
}

func TestScaffoldPrompt(t *testing.T) {
	tests := []struct {
		streak int
		want   string
	}{
		{0, "Find the m sound."},
		{1, "You've got this! Find the m sound."},
		{2, "Let's slow down and listen carefully. Find the m sound."},
		{3, "It's okay, we'll make this one simpler. Take your time. Find the m sound."},
		{5, "It's okay, we'll make this one simpler. Take your time. Find the m sound."},
	}

	for _, tt := range tests {
		if got := ScaffoldPrompt("Find the m sound.", tt.streak); got != tt.want {
			t.Errorf("ScaffoldPrompt(streak=%d) = %q, want %q", tt.streak, got, tt.want)
		}
	}
}

func TestEffectiveDifficulty(t *testing.T) {
	settings := models.DefaultSettings()
	settings.Difficulty = models.DifficultyChallenge

	node := models.SkillNode{ID: "letter-grove"}

	if got := EffectiveDifficulty(settings, node, 0); got != models.DifficultyChallenge {
		t.Errorf("difficulty = %q, want configured baseline", got)
	}
	if got := EffectiveDifficulty(settings, node, 2); got != models.DifficultyEasy {
		t.Errorf("difficulty at streak 2 = %q, want easy", got)
	}

	// A node with repeated attempts and low best accuracy forces easy even
	// with no active streak.
	node.Attempts = 4
	node.Accuracy = 40
	if got := EffectiveDifficulty(settings, node, 0); got != models.DifficultyEasy {
		t.Errorf("difficulty for struggling node = %q, want easy", got)
	}

	// At exactly the accuracy threshold the baseline holds.
	node.Accuracy = 50
	if got := EffectiveDifficulty(settings, node, 0); got != models.DifficultyChallenge {
		t.Errorf("difficulty at 50%% accuracy = %q, want baseline", got)
	}
}
