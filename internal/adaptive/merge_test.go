package adaptive

import (
	"fmt"
	"testing"

	"phonicsquest/internal/content"
	"phonicsquest/internal/models"
)

func taskList(prefix string, n int) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = models.Task{
			Kind:         models.ActivityLetterSound,
			Prompt:       fmt.Sprintf("%s-%d", prefix, i),
			Options:      []string{"a", "b"},
			CorrectIndex: 0,
		}
	}
	return tasks
}

func TestMergeTasks(t *testing.T) {
	local := taskList("local", content.QuestLength)

	t.Run("no ai tasks keeps local list", func(t *testing.T) {
		got := MergeTasks(local, nil)
		if len(got) != content.QuestLength {
			t.Fatalf("len = %d, want %d", len(got), content.QuestLength)
		}
		for i, task := range got {
			if task.Prompt != local[i].Prompt {
				t.Errorf("task %d = %q, want local task", i, task.Prompt)
			}
		}
	})

	t.Run("partial ai list is padded from local front", func(t *testing.T) {
		got := MergeTasks(local, taskList("ai", 3))
		if len(got) != content.QuestLength {
			t.Fatalf("len = %d, want %d", len(got), content.QuestLength)
		}
		for i := 0; i < 3; i++ {
			if got[i].Prompt != fmt.Sprintf("ai-%d", i) {
				t.Errorf("task %d = %q, want ai task", i, got[i].Prompt)
			}
		}
		if got[3].Prompt != "local-0" || got[4].Prompt != "local-1" {
			t.Errorf("filler tasks = %q, %q, want local-0, local-1", got[3].Prompt, got[4].Prompt)
		}
	})

	t.Run("oversized ai list is truncated", func(t *testing.T) {
		got := MergeTasks(local, taskList("ai", content.QuestLength+2))
		if len(got) != content.QuestLength {
			t.Fatalf("len = %d, want %d", len(got), content.QuestLength)
		}
		for i, task := range got {
			if task.Prompt != fmt.Sprintf("ai-%d", i) {
				t.Errorf("task %d = %q, want ai task", i, task.Prompt)
			}
		}
	})

	t.Run("full ai list replaces local wholesale", func(t *testing.T) {
		got := MergeTasks(local, taskList("ai", content.QuestLength))
		for i, task := range got {
			if task.Prompt != fmt.Sprintf("ai-%d", i) {
				t.Errorf("task %d = %q, want ai task", i, task.Prompt)
			}
		}
	})
}
