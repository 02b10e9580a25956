package repository

import (
	"encoding/json"
	"testing"
	"time"

	"phonicsquest/internal/models"
)

func TestMigrateStateUnreadablePayload(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	state := MigrateState([]byte("{corrupted"), now)

	fresh := models.NewAppState(now)
	if len(state.Nodes) != len(fresh.Nodes) {
		t.Errorf("nodes = %d, want fresh install map of %d", len(state.Nodes), len(fresh.Nodes))
	}
	if state.Nodes[0].IsLocked {
		t.Error("first node locked in fallback state")
	}
	if state.SchemaVersion != models.CurrentSchemaVersion {
		t.Errorf("schema version = %d, want %d", state.SchemaVersion, models.CurrentSchemaVersion)
	}
}

func TestMigrateStateRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	original := models.NewAppState(now)
	original.Profile.TotalStars = 60
	original.Profile.TotalMagicSeeds = 25
	original.Nodes[0].Accuracy = 92
	original.Nodes[0].Attempts = 3
	original.Nodes[1].IsLocked = false
	original.TotalStars = 60
	original.TotalMagicSeeds = 25

	payload, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	state := MigrateState(payload, now.Add(time.Hour))

	if state.Profile.TotalStars != 60 || state.Profile.TotalMagicSeeds != 25 {
		t.Error("profile totals not preserved")
	}
	if state.Nodes[0].Accuracy != 92 || state.Nodes[0].Attempts != 3 {
		t.Error("node progress not preserved")
	}
	if state.Nodes[1].IsLocked {
		t.Error("unlocked node re-locked by migration")
	}
	if state.Profile.ID != original.Profile.ID {
		t.Error("profile identity not preserved")
	}
}

func TestMigrateStatePartialNodes(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// An older snapshot that only knew about two nodes, one of them with the
	// first biome wrongly locked.
	payload := `{
		"schemaVersion": 1,
		"nodes": [
			{"id": "whispering-meadow", "accuracy": 88, "attempts": 2, "isLocked": true},
			{"id": "no-such-biome", "accuracy": 99}
		]
	}`

	state := MigrateState([]byte(payload), now)

	fresh := models.NewAppState(now)
	if len(state.Nodes) != len(fresh.Nodes) {
		t.Fatalf("nodes = %d, want the full install map of %d", len(state.Nodes), len(fresh.Nodes))
	}
	if state.Nodes[0].Accuracy != 88 || state.Nodes[0].Attempts != 2 {
		t.Error("stored node progress not overlaid")
	}
	if state.Nodes[0].IsLocked {
		t.Error("first node stayed locked after migration")
	}

	// Nodes the old schema never stored keep fresh defaults.
	if state.Nodes[2].Accuracy != 0 || !state.Nodes[2].IsLocked {
		t.Error("unknown node lost its fresh defaults")
	}
}

func TestMigrateStateLegacyCounters(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// The oldest snapshots carried rewards only at the top level.
	payload := `{"totalStars": 120, "totalSoundShards": 4, "totalMagicSeeds": 55}`

	state := MigrateState([]byte(payload), now)

	if state.Profile.TotalStars != 120 {
		t.Errorf("profile stars = %d, want promoted 120", state.Profile.TotalStars)
	}
	if state.Profile.TotalSoundShards != 4 || state.Profile.TotalMagicSeeds != 55 {
		t.Error("legacy counters not promoted into the profile")
	}
	if state.TotalStars != 120 {
		t.Error("top-level mirror not rewritten from the profile")
	}
}

func TestMigrateStateProfileWins(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// When both the profile and the legacy counters are present the profile
	// is the source of truth.
	payload := `{
		"totalStars": 999,
		"profile": {"id": "p-1", "totalStars": 80, "totalSoundShards": 2, "totalMagicSeeds": 30}
	}`

	state := MigrateState([]byte(payload), now)

	if state.Profile.TotalStars != 80 {
		t.Errorf("profile stars = %d, want 80", state.Profile.TotalStars)
	}
	if state.TotalStars != 80 {
		t.Errorf("top-level stars = %d, want mirrored 80", state.TotalStars)
	}
}

func TestMigrateStateSessionCap(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	sessions := make([]models.GameSession, models.MaxSessionHistory+10)
	for i := range sessions {
		sessions[i] = models.GameSession{ID: "s", SkillID: "whispering-meadow"}
	}
	payload, err := json.Marshal(map[string]any{"sessions": sessions})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	state := MigrateState(payload, now)
	if len(state.Sessions) != models.MaxSessionHistory {
		t.Errorf("sessions = %d, want capped at %d", len(state.Sessions), models.MaxSessionHistory)
	}
}

func TestMigrateStateSettingsNormalized(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	payload := `{"settings": {"difficulty": "nightmare", "speechRate": 0}}`

	state := MigrateState([]byte(payload), now)
	if state.Settings.Difficulty != models.DifficultyStandard {
		t.Errorf("difficulty = %q, want normalized default", state.Settings.Difficulty)
	}
	if state.Settings.SpeechRate != 1.0 {
		t.Errorf("speech rate = %v, want normalized 1.0", state.Settings.SpeechRate)
	}
}

func TestMigrateStateNormalizesGuardianKeys(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	payload := []byte(`{
		"guardians": {
			"SH": {"sound": "SH", "name": "Shelly"},
			" th ": {"sound": " th ", "name": "Thistle"},
			"  ": {"sound": "  ", "name": "Nobody"}
		}
	}`)

	state := MigrateState(payload, now)

	if len(state.Guardians) != 2 {
		t.Fatalf("guardians = %d, want 2", len(state.Guardians))
	}
	sh, ok := state.Guardians["sh"]
	if !ok {
		t.Fatal("guardian stored under unnormalized key")
	}
	if sh.Sound != "sh" {
		t.Errorf("sound = %q, want %q", sh.Sound, "sh")
	}
	if _, ok := state.Guardians["th"]; !ok {
		t.Error("whitespace-padded key not normalized")
	}
}
