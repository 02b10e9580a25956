package models

import "time"

// SkillLevel identifies one tier of the phonics curriculum.
// Levels form a fixed order from easiest to hardest.
type SkillLevel string

const (
	LevelPhonemicAwareness SkillLevel = "phonemic-awareness"
	LevelLetterSounds      SkillLevel = "letter-sounds"
	LevelDigraphsBlends    SkillLevel = "digraphs-blends"
	LevelBlendingCVC       SkillLevel = "blending-cvc"
	LevelSightWords        SkillLevel = "sight-words"
)

// SkillLevels returns all levels in curriculum order.
func SkillLevels() []SkillLevel {
	return []SkillLevel{
		LevelPhonemicAwareness,
		LevelLetterSounds,
		LevelDigraphsBlends,
		LevelBlendingCVC,
		LevelSightWords,
	}
}

// Rank returns the position of the level in curriculum order, or -1 if unknown.
func (l SkillLevel) Rank() int {
	for i, level := range SkillLevels() {
		if level == l {
			return i
		}
	}
	return -1
}

// Mastery and unlock thresholds for skill nodes.
const (
	MasteryAccuracy  = 85 // a session at or above this accuracy counts as a pass
	UnlockAccuracy   = 70 // a node at or above this best accuracy unlocks its successor
	PassesForMastery = 3  // passes on separate days required to master a node
)

// SkillNode is one unit of the progression map (a "biome" the child can visit).
// Nodes are created once at install and mutated only by the progression reducer.
type SkillNode struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Level            SkillLevel `json:"level"`
	Sound            string     `json:"sound"` // target sound, keys the guardian collectible
	Accuracy         int        `json:"accuracy"`
	SuccessivePasses int        `json:"successivePasses"`
	IsMastered       bool       `json:"isMastered"`
	Attempts         int        `json:"attempts"`
	TimeSpentSec     int        `json:"timeSpentSec"`
	LastAttemptAt    *time.Time `json:"lastAttemptAt,omitempty"`
	IsLocked         bool       `json:"isLocked"`
}

// Clone returns a copy of the node with its own timestamp pointer.
func (n SkillNode) Clone() SkillNode {
	out := n
	if n.LastAttemptAt != nil {
		t := *n.LastAttemptAt
		out.LastAttemptAt = &t
	}
	return out
}
