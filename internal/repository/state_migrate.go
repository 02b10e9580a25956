package repository

import (
	"encoding/json"
	"time"

	"phonicsquest/internal/models"
)

// statePayload mirrors AppState with every field optional, so snapshots
// written by older schema versions decode without error.
type statePayload struct {
	SchemaVersion    *int                              `json:"schemaVersion"`
	Nodes            []nodePayload                     `json:"nodes"`
	TotalStars       *int                              `json:"totalStars"`
	TotalSoundShards *int                              `json:"totalSoundShards"`
	TotalMagicSeeds  *int                              `json:"totalMagicSeeds"`
	ActiveCharacter  *string                           `json:"activeCharacter"`
	Settings         *models.Settings                  `json:"settings"`
	Guardians        map[string]models.Guardian        `json:"guardians"`
	Profile          *profilePayload                   `json:"profile"`
	Sessions         []models.GameSession              `json:"sessions"`
}

type nodePayload struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Level            models.SkillLevel `json:"level"`
	Sound            string            `json:"sound"`
	Accuracy         *int              `json:"accuracy"`
	SuccessivePasses *int              `json:"successivePasses"`
	IsMastered       *bool             `json:"isMastered"`
	Attempts         *int              `json:"attempts"`
	TimeSpentSec     *int              `json:"timeSpentSec"`
	LastAttemptAt    *time.Time        `json:"lastAttemptAt"`
	IsLocked         *bool             `json:"isLocked"`
}

type profilePayload struct {
	ID                 *string    `json:"id"`
	Name               *string    `json:"name"`
	Character          *string    `json:"character"`
	TotalStars         *int       `json:"totalStars"`
	TotalSoundShards   *int       `json:"totalSoundShards"`
	TotalMagicSeeds    *int       `json:"totalMagicSeeds"`
	MasteryLevel       *int       `json:"masteryLevel"`
	PlacementScore     *int       `json:"placementScore"`
	OnboardingDone     *bool      `json:"onboardingDone"`
	Paired             *bool      `json:"paired"`
	Notifications      []string   `json:"notifications"`
	LastActiveAt       *time.Time `json:"lastActiveAt"`
	LastDailyChallenge *time.Time `json:"lastDailyChallenge"`
	CreatedAt          *time.Time `json:"createdAt"`
}

// MigrateState normalizes a persisted payload into a complete AppState,
// defaulting every absent field. Unreadable payloads fall back to a fresh
// install state: schema drift is never a hard failure that blocks start.
func MigrateState(raw []byte, now time.Time) models.AppState {
	fresh := models.NewAppState(now)

	var p statePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fresh
	}

	state := fresh

	if len(p.Nodes) > 0 {
		state.Nodes = migrateNodes(p.Nodes, fresh.Nodes)
	}
	if p.ActiveCharacter != nil {
		state.ActiveCharacter = *p.ActiveCharacter
	}
	if p.Settings != nil {
		state.Settings = p.Settings.Normalize()
	}
	if p.Guardians != nil {
		// Older snapshots stored guardians under unnormalized sound keys;
		// re-key so a later save cannot duplicate the entry.
		guardians := make(map[string]models.Guardian, len(p.Guardians))
		for key, g := range p.Guardians {
			key = models.GuardianKey(key)
			if key == "" {
				continue
			}
			g.Sound = key
			guardians[key] = g
		}
		state.Guardians = guardians
	}
	if p.Profile != nil {
		state.Profile = migrateProfile(*p.Profile, fresh.Profile)
	}
	if p.Sessions != nil {
		state.Sessions = p.Sessions
		if len(state.Sessions) > models.MaxSessionHistory {
			state.Sessions = state.Sessions[:models.MaxSessionHistory]
		}
	}

	// Legacy snapshots only carried the top-level counters; promote them into
	// the profile when the profile itself has none, then remirror.
	if p.Profile == nil || p.Profile.TotalStars == nil {
		if p.TotalStars != nil {
			state.Profile.TotalStars = *p.TotalStars
		}
		if p.TotalSoundShards != nil {
			state.Profile.TotalSoundShards = *p.TotalSoundShards
		}
		if p.TotalMagicSeeds != nil {
			state.Profile.TotalMagicSeeds = *p.TotalMagicSeeds
		}
	}
	state.TotalStars = state.Profile.TotalStars
	state.TotalSoundShards = state.Profile.TotalSoundShards
	state.TotalMagicSeeds = state.Profile.TotalMagicSeeds

	state.SchemaVersion = models.CurrentSchemaVersion
	return state
}

// migrateNodes keeps the install map as the node list, overlaying progress
// from the stored snapshot by node ID. Nodes an older schema never knew about
// keep their fresh defaults.
func migrateNodes(stored []nodePayload, fresh []models.SkillNode) []models.SkillNode {
	byID := make(map[string]nodePayload, len(stored))
	for _, n := range stored {
		byID[n.ID] = n
	}

	nodes := make([]models.SkillNode, len(fresh))
	for i, node := range fresh {
		p, ok := byID[node.ID]
		if !ok {
			nodes[i] = node
			continue
		}
		if p.Accuracy != nil {
			node.Accuracy = *p.Accuracy
		}
		if p.SuccessivePasses != nil {
			node.SuccessivePasses = *p.SuccessivePasses
		}
		if p.IsMastered != nil {
			node.IsMastered = *p.IsMastered
		}
		if p.Attempts != nil {
			node.Attempts = *p.Attempts
		}
		if p.TimeSpentSec != nil {
			node.TimeSpentSec = *p.TimeSpentSec
		}
		if p.LastAttemptAt != nil {
			node.LastAttemptAt = p.LastAttemptAt
		}
		if p.IsLocked != nil {
			node.IsLocked = *p.IsLocked
		}
		nodes[i] = node
	}

	// The first biome is unlocked no matter what was stored.
	if len(nodes) > 0 {
		nodes[0].IsLocked = false
	}
	return nodes
}

func migrateProfile(p profilePayload, fresh models.UserProfile) models.UserProfile {
	profile := fresh
	if p.ID != nil && *p.ID != "" {
		profile.ID = *p.ID
	}
	if p.Name != nil {
		profile.Name = *p.Name
	}
	if p.Character != nil {
		profile.Character = *p.Character
	}
	if p.TotalStars != nil {
		profile.TotalStars = *p.TotalStars
	}
	if p.TotalSoundShards != nil {
		profile.TotalSoundShards = *p.TotalSoundShards
	}
	if p.TotalMagicSeeds != nil {
		profile.TotalMagicSeeds = *p.TotalMagicSeeds
	}
	if p.MasteryLevel != nil && *p.MasteryLevel >= 1 {
		profile.MasteryLevel = *p.MasteryLevel
	}
	if p.PlacementScore != nil {
		profile.PlacementScore = *p.PlacementScore
	}
	if p.OnboardingDone != nil {
		profile.OnboardingDone = *p.OnboardingDone
	}
	if p.Paired != nil {
		profile.Paired = *p.Paired
	}
	if p.Notifications != nil {
		profile.Notifications = p.Notifications
	}
	if p.LastActiveAt != nil {
		profile.LastActiveAt = *p.LastActiveAt
	}
	profile.LastDailyChallenge = p.LastDailyChallenge
	if p.CreatedAt != nil {
		profile.CreatedAt = *p.CreatedAt
	}
	return profile
}
