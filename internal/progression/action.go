package progression

import "phonicsquest/internal/models"

// Action is a discrete event dispatched into the reducer. Actions are applied
// strictly in the order they are issued; the reducer is the only writer of
// app state.
type Action interface {
	isAction()
}

// GameComplete records a finished quest for a skill node.
type GameComplete struct {
	Session models.GameSession
}

// PlacementComplete applies the result of the placement quiz: every node at or
// before the starting level unlocks, the rest lock, and onboarding is done.
type PlacementComplete struct {
	Score      int
	StartLevel models.SkillLevel
}

// OnboardingComplete sets the player name and chosen tutor character.
type OnboardingComplete struct {
	Name      string
	Character string
}

// DailyChallengeComplete awards stars for the once-a-day bonus quest.
type DailyChallengeComplete struct {
	Stars int
}

// GuardianSave upserts a rescued guardian into the collection.
type GuardianSave struct {
	Guardian models.Guardian
}

// SettingsUpdate replaces the settings wholesale.
type SettingsUpdate struct {
	Settings models.Settings
}

// ResetProgress returns to the initial state, preserving only settings.
type ResetProgress struct{}

// NotificationsDismiss clears the profile's notification list.
type NotificationsDismiss struct{}

func (GameComplete) isAction()           {}
func (PlacementComplete) isAction()      {}
func (OnboardingComplete) isAction()     {}
func (DailyChallengeComplete) isAction() {}
func (GuardianSave) isAction()           {}
func (SettingsUpdate) isAction()         {}
func (ResetProgress) isAction()          {}
func (NotificationsDismiss) isAction()   {}
