package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"phonicsquest/internal/adaptive"
	"phonicsquest/internal/models"
)

func newTestQuestService() *QuestService {
	progress := NewProgressService(newMemoryStore(), nil)
	return NewQuestService(progress, func() *adaptive.Pipeline {
		return adaptive.NewPipeline(nil, nil, 0)
	})
}

func TestLastErrorStreak(t *testing.T) {
	state := models.NewAppState(time.Now())
	// Most recent first, matching how sessions are stored.
	state.Sessions = []models.GameSession{
		{SkillID: "letter-grove", ErrorStreak: 3},
		{SkillID: "letter-grove", ErrorStreak: 1},
		{SkillID: "blend-bog", ErrorStreak: 2},
	}

	tests := []struct {
		skillID string
		want    int
	}{
		{"letter-grove", 3},
		{"blend-bog", 2},
		{"word-forge", 0},
	}
	for _, tt := range tests {
		if got := lastErrorStreak(state, tt.skillID); got != tt.want {
			t.Errorf("lastErrorStreak(%q) = %d, want %d", tt.skillID, got, tt.want)
		}
	}
}

func TestQuestLifecycle(t *testing.T) {
	svc := newTestQuestService()

	status, err := svc.StartQuest(1, "whispering-meadow")
	if err != nil {
		t.Fatal(err)
	}
	if len(status.Tasks) == 0 {
		t.Fatal("quest started with no tasks")
	}

	for range status.Tasks {
		if _, err := svc.SubmitAnswer(1, "", -1, 1200); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.SubmitAnswer(1, "", -1, 1200); !errors.Is(err, ErrQuestExhausted) {
		t.Errorf("answer past the end = %v, want ErrQuestExhausted", err)
	}

	state, session, err := svc.CompleteQuest(1)
	if err != nil {
		t.Fatal(err)
	}
	if session.TasksCompleted != len(status.Tasks) {
		t.Errorf("tasks completed = %d, want %d", session.TasksCompleted, len(status.Tasks))
	}
	if len(state.Sessions) == 0 {
		t.Error("completed session not folded into state")
	}

	if _, _, err := svc.CompleteQuest(1); !errors.Is(err, ErrNoActiveQuest) {
		t.Errorf("second complete = %v, want ErrNoActiveQuest", err)
	}
}

func TestQuestConcurrentHints(t *testing.T) {
	svc := newTestQuestService()

	status, err := svc.StartQuest(1, "whispering-meadow")
	if err != nil {
		t.Fatal(err)
	}

	const hints = 10
	var wg sync.WaitGroup
	wg.Add(hints)
	for i := 0; i < hints; i++ {
		go func() {
			defer wg.Done()
			if err := svc.RecordHint(1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	for range status.Tasks {
		if _, err := svc.SubmitAnswer(1, "", -1, 900); err != nil {
			t.Fatal(err)
		}
	}
	_, session, err := svc.CompleteQuest(1)
	if err != nil {
		t.Fatal(err)
	}
	if session.HintCount != hints {
		t.Errorf("hint count = %d, want %d: a concurrent hint was dropped", session.HintCount, hints)
	}
}

func TestStartQuestLockedSkill(t *testing.T) {
	svc := newTestQuestService()

	if _, err := svc.StartQuest(1, "reading-summit"); !errors.Is(err, ErrSkillLocked) {
		t.Errorf("locked skill = %v, want ErrSkillLocked", err)
	}
	if _, err := svc.StartQuest(1, "nowhere"); !errors.Is(err, ErrUnknownSkill) {
		t.Errorf("unknown skill = %v, want ErrUnknownSkill", err)
	}
}
