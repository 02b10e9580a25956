package content

import (
	"testing"

	"phonicsquest/internal/models"
)

func TestGenerateTasksLength(t *testing.T) {
	settings := models.DefaultSettings()

	for _, level := range models.SkillLevels() {
		node := models.SkillNode{ID: "test-node", Level: level, Sound: "s"}
		tasks := GenerateTasks(node, settings)
		if len(tasks) != QuestLength {
			t.Errorf("level %s: len = %d, want %d", level, len(tasks), QuestLength)
		}
		for i, task := range tasks {
			if err := task.Validate(); err != nil {
				t.Errorf("level %s task %d invalid: %v", level, i, err)
			}
		}
	}
}

func TestGenerateTasksDeterministic(t *testing.T) {
	settings := models.DefaultSettings()
	node := models.SkillNode{ID: "letter-grove", Level: models.LevelLetterSounds, Sound: "t"}

	first := GenerateTasks(node, settings)
	second := GenerateTasks(node, settings)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Prompt != second[i].Prompt || first[i].CorrectIndex != second[i].CorrectIndex {
			t.Errorf("task %d differs across identical generations", i)
		}
	}
}

func TestGenerateTasksVariesByAttempt(t *testing.T) {
	settings := models.DefaultSettings()
	node := models.SkillNode{ID: "letter-grove", Level: models.LevelLetterSounds, Sound: "t"}

	first := GenerateTasks(node, settings)
	node.Attempts = 1
	second := GenerateTasks(node, settings)

	same := true
	for i := range first {
		if first[i].Prompt != second[i].Prompt || first[i].CorrectIndex != second[i].CorrectIndex {
			same = false
			break
		}
	}
	if same {
		t.Error("a repeat visit produced an identical quest")
	}
}

func TestGenerateTasksKindsMatchLevel(t *testing.T) {
	settings := models.DefaultSettings()

	node := models.SkillNode{ID: "word-forge", Level: models.LevelBlendingCVC, Sound: "c"}
	for _, task := range GenerateTasks(node, settings) {
		switch task.Kind {
		case models.ActivityBlending, models.ActivityWordBuilder, models.ActivitySoundMatch:
		default:
			t.Errorf("unexpected kind %s for blending level", task.Kind)
		}
	}

	node = models.SkillNode{ID: "sight-citadel", Level: models.LevelSightWords, Sound: "th"}
	for _, task := range GenerateTasks(node, settings) {
		switch task.Kind {
		case models.ActivitySightWord, models.ActivityRhymeTime, models.ActivitySoundMatch:
		default:
			t.Errorf("unexpected kind %s for sight-word level", task.Kind)
		}
	}
}

func TestForLevelFallsBack(t *testing.T) {
	c := ForLevel(models.SkillLevel("not-a-level"))
	if len(c.Words) == 0 || len(c.Sounds) == 0 {
		t.Error("unknown level returned an empty content bank")
	}
}
