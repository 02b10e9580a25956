package ai

import (
	"testing"

	"phonicsquest/internal/content"
	"phonicsquest/internal/models"
)

const planJSON = `[
	{"kind": "letter-sound", "prompt": "Tap the letter for /s/.", "options": ["s", "t", "m"], "correctIndex": 0},
	{"kind": "sound-match", "prompt": "Which word has /sh/?", "options": ["ship", "cat"], "correctIndex": 0, "targetSound": "sh"}
]`

func TestParseTaskPlan(t *testing.T) {
	tasks, err := ParseTaskPlan(planJSON)
	if err != nil {
		t.Fatalf("ParseTaskPlan: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2", len(tasks))
	}
	if tasks[0].Kind != models.ActivityLetterSound {
		t.Errorf("kind = %s, want letter-sound", tasks[0].Kind)
	}
	if tasks[1].TargetSound != "sh" {
		t.Errorf("target sound = %q, want sh", tasks[1].TargetSound)
	}
}

func TestParseTaskPlanStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + planJSON + "\n```"
	tasks, err := ParseTaskPlan(fenced)
	if err != nil {
		t.Fatalf("ParseTaskPlan: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("len = %d, want 2", len(tasks))
	}

	// A bare fence without the language tag works too.
	tasks, err = ParseTaskPlan("```\n" + planJSON + "\n```")
	if err != nil {
		t.Fatalf("ParseTaskPlan: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("len = %d, want 2", len(tasks))
	}
}

func TestParseTaskPlanDropsInvalidItems(t *testing.T) {
	raw := `[
		{"kind": "letter-sound", "prompt": "Tap /s/.", "options": ["s", "t"], "correctIndex": 0},
		{"kind": "letter-sound", "prompt": "", "options": ["s", "t"], "correctIndex": 0},
		{"kind": "word-builder", "prompt": "Build it.", "targetWord": ""},
		{"kind": "no-such-game", "prompt": "??", "options": ["a", "b"], "correctIndex": 0},
		{"kind": "letter-sound", "prompt": "Tap /m/.", "options": ["m", "n"], "correctIndex": 5}
	]`

	tasks, err := ParseTaskPlan(raw)
	if err != nil {
		t.Fatalf("ParseTaskPlan: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len = %d, want 1 valid task", len(tasks))
	}
	if tasks[0].Prompt != "Tap /s/." {
		t.Errorf("kept task = %q", tasks[0].Prompt)
	}
}

func TestParseTaskPlanCapsAtQuestLength(t *testing.T) {
	raw := "["
	for i := 0; i < content.QuestLength+3; i++ {
		if i > 0 {
			raw += ","
		}
		raw += `{"kind": "letter-sound", "prompt": "Tap /s/.", "options": ["s", "t"], "correctIndex": 0}`
	}
	raw += "]"

	tasks, err := ParseTaskPlan(raw)
	if err != nil {
		t.Fatalf("ParseTaskPlan: %v", err)
	}
	if len(tasks) != content.QuestLength {
		t.Errorf("len = %d, want %d", len(tasks), content.QuestLength)
	}
}

func TestParseTaskPlanMalformedJSON(t *testing.T) {
	if _, err := ParseTaskPlan("not json at all"); err == nil {
		t.Error("expected an error for malformed input")
	}
}
