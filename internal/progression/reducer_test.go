package progression

import (
	"testing"
	"time"

	"phonicsquest/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sessionFor(skillID string, accuracy int) models.GameSession {
	started := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return models.GameSession{
		ID:             "session-1",
		SkillID:        skillID,
		StartedAt:      started,
		EndedAt:        started.Add(4 * time.Minute),
		Accuracy:       accuracy,
		TasksCompleted: 5,
		StarsEarned:    StarsForAccuracy(accuracy),
	}
}

func TestSeedsForAccuracy(t *testing.T) {
	tests := []struct {
		accuracy int
		want     int
	}{
		{100, 10},
		{90, 10},
		{89, 5},
		{70, 5},
		{69, 1},
		{0, 1},
	}

	for _, tt := range tests {
		if got := SeedsForAccuracy(tt.accuracy); got != tt.want {
			t.Errorf("SeedsForAccuracy(%d) = %d, want %d", tt.accuracy, got, tt.want)
		}
	}
}

func TestStarsForAccuracy(t *testing.T) {
	tests := []struct {
		accuracy int
		want     int
	}{
		{100, 30},
		{85, 30},
		{84, 10},
		{60, 10},
		{59, 2},
		{0, 2},
	}

	for _, tt := range tests {
		if got := StarsForAccuracy(tt.accuracy); got != tt.want {
			t.Errorf("StarsForAccuracy(%d) = %d, want %d", tt.accuracy, got, tt.want)
		}
	}
}

func TestGameCompleteRewards(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(now))
	state := models.NewAppState(now)
	skillID := state.Nodes[0].ID

	next := r.Apply(state, GameComplete{Session: sessionFor(skillID, 90)})

	node := next.NodeByID(skillID)
	if node.SuccessivePasses != 1 {
		t.Errorf("successive passes = %d, want 1", node.SuccessivePasses)
	}
	if node.Accuracy != 90 {
		t.Errorf("node accuracy = %d, want 90", node.Accuracy)
	}
	if node.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", node.Attempts)
	}
	if node.IsMastered {
		t.Error("node mastered after a single pass")
	}

	if next.Profile.TotalMagicSeeds != 10 {
		t.Errorf("seeds = %d, want 10", next.Profile.TotalMagicSeeds)
	}
	if next.Profile.TotalStars != 30 {
		t.Errorf("stars = %d, want 30", next.Profile.TotalStars)
	}
	if next.Profile.TotalSoundShards != 0 {
		t.Errorf("shards = %d, want 0", next.Profile.TotalSoundShards)
	}
	if next.TotalStars != next.Profile.TotalStars {
		t.Error("top-level star mirror out of sync with profile")
	}

	if len(next.Sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(next.Sessions))
	}
	if next.Sessions[0].SeedsEarned != 10 {
		t.Errorf("recorded session seeds = %d, want 10", next.Sessions[0].SeedsEarned)
	}

	// A pass at unlock accuracy opens the next biome.
	if next.Nodes[1].IsLocked {
		t.Error("second node still locked after 90% on the first")
	}
	if !next.Nodes[2].IsLocked {
		t.Error("third node unlocked with no progress on the second")
	}
}

func TestGameCompleteDoesNotMutateInput(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(now))
	state := models.NewAppState(now)
	skillID := state.Nodes[0].ID

	r.Apply(state, GameComplete{Session: sessionFor(skillID, 90)})

	if state.Nodes[0].Attempts != 0 {
		t.Error("input state was mutated")
	}
	if len(state.Sessions) != 0 {
		t.Error("input session history was mutated")
	}
}

func TestSuccessivePassesSameDay(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(day))
	state := models.NewAppState(day)
	skillID := state.Nodes[0].ID

	// First pass from a zero streak counts even without a day boundary.
	state = r.Apply(state, GameComplete{Session: sessionFor(skillID, 95)})
	if got := state.NodeByID(skillID).SuccessivePasses; got != 1 {
		t.Fatalf("passes after first session = %d, want 1", got)
	}

	// More passes the same day do not advance the streak.
	state = r.Apply(state, GameComplete{Session: sessionFor(skillID, 95)})
	state = r.Apply(state, GameComplete{Session: sessionFor(skillID, 95)})
	if got := state.NodeByID(skillID).SuccessivePasses; got != 1 {
		t.Errorf("passes after same-day repeats = %d, want 1", got)
	}
}

func TestMasteryAcrossDays(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := day
	r := NewReducer(func() time.Time { return clock })
	state := models.NewAppState(day)
	skillID := state.Nodes[0].ID

	for i := 0; i < models.PassesForMastery; i++ {
		state = r.Apply(state, GameComplete{Session: sessionFor(skillID, 92)})
		clock = clock.Add(24 * time.Hour)
	}

	node := state.NodeByID(skillID)
	if !node.IsMastered {
		t.Fatal("node not mastered after three passes on separate days")
	}
	if state.Profile.TotalSoundShards != 1 {
		t.Errorf("shards = %d, want exactly 1", state.Profile.TotalSoundShards)
	}
	if len(state.Profile.Notifications) != 1 {
		t.Errorf("notifications = %d, want 1", len(state.Profile.Notifications))
	}

	// Playing the mastered node again never grants a second shard.
	state = r.Apply(state, GameComplete{Session: sessionFor(skillID, 100)})
	if state.Profile.TotalSoundShards != 1 {
		t.Errorf("shards after replay = %d, want 1", state.Profile.TotalSoundShards)
	}
}

func TestFailedSessionKeepsStreakAndUnlocks(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := day
	r := NewReducer(func() time.Time { return clock })
	state := models.NewAppState(day)
	skillID := state.Nodes[0].ID

	state = r.Apply(state, GameComplete{Session: sessionFor(skillID, 90)})
	clock = clock.Add(24 * time.Hour)

	// A later low-accuracy day: streak is preserved, as is the unlock.
	state = r.Apply(state, GameComplete{Session: sessionFor(skillID, 40)})

	node := state.NodeByID(skillID)
	if node.SuccessivePasses != 1 {
		t.Errorf("passes = %d, want 1 after a failed session", node.SuccessivePasses)
	}
	if node.Accuracy != 90 {
		t.Errorf("best accuracy = %d, want 90 retained", node.Accuracy)
	}
	if state.Nodes[1].IsLocked {
		t.Error("second node re-locked by a failed session")
	}
}

func TestMasteryLevelFormula(t *testing.T) {
	tests := []struct {
		mastered int
		want     int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{10, 6},
	}

	for _, tt := range tests {
		nodes := make([]models.SkillNode, 10)
		for i := 0; i < tt.mastered; i++ {
			nodes[i].IsMastered = true
		}
		if got := masteryLevel(nodes); got != tt.want {
			t.Errorf("masteryLevel with %d mastered = %d, want %d", tt.mastered, got, tt.want)
		}
	}
}

func TestSessionHistoryCap(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(day))
	state := models.NewAppState(day)
	skillID := state.Nodes[0].ID

	for i := 0; i < models.MaxSessionHistory+7; i++ {
		state = r.Apply(state, GameComplete{Session: sessionFor(skillID, 75)})
	}

	if len(state.Sessions) != models.MaxSessionHistory {
		t.Errorf("history length = %d, want %d", len(state.Sessions), models.MaxSessionHistory)
	}
}

func TestPlacementComplete(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(day))
	state := models.NewAppState(day)

	next := r.Apply(state, PlacementComplete{Score: 7, StartLevel: models.LevelDigraphsBlends})

	for _, node := range next.Nodes {
		wantLocked := node.Level.Rank() > models.LevelDigraphsBlends.Rank()
		if node.IsLocked != wantLocked {
			t.Errorf("node %s locked = %v, want %v", node.ID, node.IsLocked, wantLocked)
		}
	}
	if !next.Profile.OnboardingDone {
		t.Error("onboarding not marked done")
	}
	if next.Profile.PlacementScore != 7 {
		t.Errorf("placement score = %d, want 7", next.Profile.PlacementScore)
	}

	// Even a bottom placement leaves the first node open.
	next = r.Apply(state, PlacementComplete{Score: 0, StartLevel: models.SkillLevel("bogus")})
	if next.Nodes[0].IsLocked {
		t.Error("first node locked after lowest placement")
	}
}

func TestResetPreservesSettingsOnly(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(day))
	state := models.NewAppState(day)
	skillID := state.Nodes[0].ID

	state = r.Apply(state, SettingsUpdate{Settings: models.Settings{Difficulty: models.DifficultyChallenge, SpeechRate: 0.5}})
	state = r.Apply(state, GameComplete{Session: sessionFor(skillID, 95)})
	oldProfileID := state.Profile.ID

	next := r.Apply(state, ResetProgress{})

	if next.Settings.Difficulty != models.DifficultyChallenge {
		t.Error("reset discarded settings")
	}
	if next.Settings.SpeechRate != 0.5 {
		t.Errorf("reset speech rate = %v, want 0.5", next.Settings.SpeechRate)
	}
	if next.Profile.TotalStars != 0 || next.Profile.TotalMagicSeeds != 0 {
		t.Error("reset kept reward totals")
	}
	if len(next.Sessions) != 0 {
		t.Error("reset kept session history")
	}
	if next.Profile.ID == oldProfileID {
		t.Error("reset reused the old profile identity")
	}
	if next.Nodes[0].IsLocked {
		t.Error("first node locked after reset")
	}
}

func TestGuardianSave(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(day))
	state := models.NewAppState(day)

	next := r.Apply(state, GuardianSave{Guardian: models.Guardian{Sound: "  SH ", Name: "Shelly"}})
	if _, ok := next.Guardians["sh"]; !ok {
		t.Error("guardian not stored under its normalized sound key")
	}

	// Saving again under the same sound replaces, not duplicates.
	next = r.Apply(next, GuardianSave{Guardian: models.Guardian{Sound: "sh", Name: "Shadow"}})
	if len(next.Guardians) != 1 {
		t.Errorf("guardians = %d, want 1", len(next.Guardians))
	}
	if next.Guardians["sh"].Name != "Shadow" {
		t.Error("guardian not replaced on re-save")
	}

	// An empty sound is a no-op.
	next = r.Apply(next, GuardianSave{Guardian: models.Guardian{Sound: "   "}})
	if len(next.Guardians) != 1 {
		t.Error("empty-sound guardian was stored")
	}
}

func TestOnboardingAndDailyChallenge(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(day))
	state := models.NewAppState(day)

	state = r.Apply(state, OnboardingComplete{Name: "Mia", Character: "luna-the-owl"})
	if state.Profile.Name != "Mia" {
		t.Errorf("profile name = %q, want Mia", state.Profile.Name)
	}
	if state.ActiveCharacter != "luna-the-owl" {
		t.Errorf("active character = %q, want luna-the-owl", state.ActiveCharacter)
	}

	state = r.Apply(state, DailyChallengeComplete{Stars: 15})
	if state.Profile.TotalStars != 15 {
		t.Errorf("stars = %d, want 15", state.Profile.TotalStars)
	}
	if state.Profile.LastDailyChallenge == nil {
		t.Error("daily challenge timestamp not set")
	}
}

func TestNotificationsDismiss(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(day))
	state := models.NewAppState(day)
	state.Profile.Notifications = []string{"a", "b"}

	next := r.Apply(state, NotificationsDismiss{})
	if len(next.Profile.Notifications) != 0 {
		t.Errorf("notifications = %d, want 0", len(next.Profile.Notifications))
	}
}

type unknownAction struct{}

func (unknownAction) isAction() {}

func TestUnknownActionIsNoOp(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := NewReducer(fixedClock(day))
	state := models.NewAppState(day)

	next := r.Apply(state, unknownAction{})
	if len(next.Nodes) != len(state.Nodes) || next.Profile.ID != state.Profile.ID {
		t.Error("unknown action changed the state")
	}
}
