package models

import "time"

// UserProfile aggregates the player identity and lifetime reward counters.
// Derived fields (MasteryLevel) are recomputed from node state on every
// session completion; they are never independently mutated.
type UserProfile struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Character          string     `json:"character"` // chosen tutor persona
	TotalStars         int        `json:"totalStars"`
	TotalSoundShards   int        `json:"totalSoundShards"`
	TotalMagicSeeds    int        `json:"totalMagicSeeds"`
	MasteryLevel       int        `json:"masteryLevel"`
	PlacementScore     int        `json:"placementScore"`
	OnboardingDone     bool       `json:"onboardingDone"`
	Paired             bool       `json:"paired"` // linked to a parent account
	Notifications      []string   `json:"notifications"`
	LastActiveAt       time.Time  `json:"lastActiveAt"`
	LastDailyChallenge *time.Time `json:"lastDailyChallenge,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// Clone returns a copy with its own slice and pointer fields.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Notifications = append([]string(nil), p.Notifications...)
	if p.LastDailyChallenge != nil {
		t := *p.LastDailyChallenge
		out.LastDailyChallenge = &t
	}
	return out
}
