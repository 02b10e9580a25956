package models

import "time"

// MaxSessionHistory caps the session history kept in app state, most recent first.
const MaxSessionHistory = 50

// GameSession is the immutable record of one completed quest.
// It is created once at completion and never mutated afterwards.
type GameSession struct {
	ID             string    `json:"id"`
	SkillID        string    `json:"skillId"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt"`
	Accuracy       int       `json:"accuracy"`
	TasksCompleted int       `json:"tasksCompleted"`
	ErrorStreak    int       `json:"errorStreak"` // worst consecutive-wrong run observed
	HintCount      int       `json:"hintCount"`
	AvgResponseMs  int       `json:"avgResponseMs"`
	StarsEarned    int       `json:"starsEarned"`
	ShardsEarned   int       `json:"shardsEarned"` // 0 or 1, set by the reducer on mastery
	SeedsEarned    int       `json:"seedsEarned"`
}

// Duration returns the elapsed play time of the session.
func (s GameSession) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}
