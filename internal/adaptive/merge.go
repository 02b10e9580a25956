package adaptive

import (
	"phonicsquest/internal/content"
	"phonicsquest/internal/models"
)

// MergeTasks combines AI-sourced tasks with the locally generated list,
// producing exactly one quest's worth of tasks. AI tasks always win a slot
// when available; locals are filler taken in original order from the front.
func MergeTasks(local, ai []models.Task) []models.Task {
	if len(ai) == 0 {
		return local
	}

	merged := make([]models.Task, 0, content.QuestLength)
	merged = append(merged, ai...)
	if len(merged) > content.QuestLength {
		return merged[:content.QuestLength]
	}
	for _, t := range local {
		if len(merged) == content.QuestLength {
			break
		}
		merged = append(merged, t)
	}
	return merged
}
