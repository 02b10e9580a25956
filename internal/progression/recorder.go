package progression

import (
	"time"

	"github.com/google/uuid"

	"phonicsquest/internal/models"
)

// Recorder accumulates answers, hints, and timing for one quest in progress
// and builds the immutable GameSession at completion. It also tracks the
// consecutive-error streak the difficulty scaler consumes.
type Recorder struct {
	skillID   string
	startedAt time.Time

	answered    int
	correct     int
	hintCount   int
	responseMs  int
	streak      int // current consecutive wrong answers
	worstStreak int
}

// NewRecorder starts recording a quest for a skill node.
func NewRecorder(skillID string, startedAt time.Time) *Recorder {
	return &Recorder{skillID: skillID, startedAt: startedAt}
}

// RecordAnswer notes one answered task. A correct answer resets the error
// streak; a wrong one extends it.
func (r *Recorder) RecordAnswer(correct bool, responseMs int) {
	r.answered++
	r.responseMs += responseMs
	if correct {
		r.correct++
		r.streak = 0
		return
	}
	r.streak++
	if r.streak > r.worstStreak {
		r.worstStreak = r.streak
	}
}

// RecordHint notes one hint used.
func (r *Recorder) RecordHint() {
	r.hintCount++
}

// Streak returns the current consecutive-error streak.
func (r *Recorder) Streak() int {
	return r.streak
}

// Answered returns how many tasks have been answered so far.
func (r *Recorder) Answered() int {
	return r.answered
}

// Accuracy returns the running accuracy percentage, 0 when nothing has been
// answered yet.
func (r *Recorder) Accuracy() int {
	if r.answered == 0 {
		return 0
	}
	return (r.correct*100 + r.answered/2) / r.answered
}

// Build produces the immutable session record. Seeds and shards are filled in
// by the reducer; stars are computed here from the final accuracy.
func (r *Recorder) Build(endedAt time.Time) models.GameSession {
	avgMs := 0
	if r.answered > 0 {
		avgMs = r.responseMs / r.answered
	}
	accuracy := r.Accuracy()

	return models.GameSession{
		ID:             uuid.New().String(),
		SkillID:        r.skillID,
		StartedAt:      r.startedAt,
		EndedAt:        endedAt,
		Accuracy:       accuracy,
		TasksCompleted: r.answered,
		ErrorStreak:    r.worstStreak,
		HintCount:      r.hintCount,
		AvgResponseMs:  avgMs,
		StarsEarned:    StarsForAccuracy(accuracy),
	}
}
