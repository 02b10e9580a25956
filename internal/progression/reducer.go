package progression

import (
	"fmt"
	"time"

	"phonicsquest/internal/models"
)

// Reducer computes state transitions for the progression map. Apply is a pure,
// total function: it never mutates its input, never suspends, and unknown
// actions return the input state unchanged.
//
// The clock is injected so tests can simulate day rollover; mastery streaks
// only advance once per calendar day.
type Reducer struct {
	now func() time.Time
}

// NewReducer creates a reducer using the given clock. A nil clock uses
// time.Now.
func NewReducer(now func() time.Time) *Reducer {
	if now == nil {
		now = time.Now
	}
	return &Reducer{now: now}
}

// Apply returns the state after the action. The input state is never modified.
func (r *Reducer) Apply(state models.AppState, action Action) models.AppState {
	switch a := action.(type) {
	case GameComplete:
		return r.applyGameComplete(state, a)
	case PlacementComplete:
		return r.applyPlacementComplete(state, a)
	case OnboardingComplete:
		return r.applyOnboardingComplete(state, a)
	case DailyChallengeComplete:
		return r.applyDailyChallenge(state, a)
	case GuardianSave:
		return r.applyGuardianSave(state, a)
	case SettingsUpdate:
		return r.applySettingsUpdate(state, a)
	case ResetProgress:
		return r.applyReset(state)
	case NotificationsDismiss:
		return r.applyNotificationsDismiss(state)
	default:
		return state
	}
}

// SeedsForAccuracy is the deterministic seed reward for a session.
func SeedsForAccuracy(accuracy int) int {
	switch {
	case accuracy >= 90:
		return 10
	case accuracy >= 70:
		return 5
	default:
		return 1
	}
}

// StarsForAccuracy is the star reward rule applied when a session is built.
func StarsForAccuracy(accuracy int) int {
	switch {
	case accuracy >= models.MasteryAccuracy:
		return 30
	case accuracy >= 60:
		return 10
	default:
		return 2
	}
}

func (r *Reducer) applyGameComplete(state models.AppState, a GameComplete) models.AppState {
	next := state.Clone()
	now := r.now()
	session := a.Session

	seeds := SeedsForAccuracy(session.Accuracy)
	stars := session.StarsEarned
	shards := 0
	notification := ""

	if node := next.NodeByID(session.SkillID); node != nil {
		passedThisTurn := session.Accuracy >= models.MasteryAccuracy
		isNewDay := node.LastAttemptAt == nil || startOfDay(*node.LastAttemptAt).Before(startOfDay(now))

		// Mastery needs passes on separate days, but the very first pass from
		// a zero streak counts even same-day so a fresh node can progress
		// immediately.
		if passedThisTurn && (isNewDay || node.SuccessivePasses == 0) {
			if node.SuccessivePasses < models.PassesForMastery {
				node.SuccessivePasses++
			}
		}

		if node.SuccessivePasses >= models.PassesForMastery && !node.IsMastered {
			node.IsMastered = true
			shards = 1
			notification = fmt.Sprintf("You mastered %s! A sound guardian is free!", node.Name)
		}

		if session.Accuracy > node.Accuracy {
			node.Accuracy = session.Accuracy
		}
		node.Attempts++
		attemptAt := now
		node.LastAttemptAt = &attemptAt
		node.TimeSpentSec += int(session.Duration().Seconds())
	}

	propagateUnlocks(next.Nodes)

	session.SeedsEarned = seeds
	session.ShardsEarned = shards

	next.Profile.TotalMagicSeeds += seeds
	next.Profile.TotalStars += stars
	next.Profile.TotalSoundShards += shards
	next.Profile.MasteryLevel = masteryLevel(next.Nodes)
	next.Profile.LastActiveAt = now
	if notification != "" {
		next.Profile.Notifications = append(next.Profile.Notifications, notification)
	}

	next.Sessions = append([]models.GameSession{session}, next.Sessions...)
	if len(next.Sessions) > models.MaxSessionHistory {
		next.Sessions = next.Sessions[:models.MaxSessionHistory]
	}

	return mirrorTotals(next)
}

func (r *Reducer) applyPlacementComplete(state models.AppState, a PlacementComplete) models.AppState {
	next := state.Clone()

	startRank := a.StartLevel.Rank()
	if startRank < 0 {
		startRank = 0
	}
	for i := range next.Nodes {
		next.Nodes[i].IsLocked = next.Nodes[i].Level.Rank() > startRank
	}
	// The first biome is open no matter what the quiz said.
	if len(next.Nodes) > 0 {
		next.Nodes[0].IsLocked = false
	}

	next.Profile.PlacementScore = a.Score
	next.Profile.OnboardingDone = true
	next.Profile.LastActiveAt = r.now()
	return mirrorTotals(next)
}

func (r *Reducer) applyOnboardingComplete(state models.AppState, a OnboardingComplete) models.AppState {
	next := state.Clone()
	next.Profile.Name = a.Name
	next.Profile.Character = a.Character
	next.ActiveCharacter = a.Character
	next.Profile.LastActiveAt = r.now()
	return next
}

func (r *Reducer) applyDailyChallenge(state models.AppState, a DailyChallengeComplete) models.AppState {
	next := state.Clone()
	now := r.now()
	next.Profile.TotalStars += a.Stars
	next.Profile.LastDailyChallenge = &now
	next.Profile.LastActiveAt = now
	return mirrorTotals(next)
}

func (r *Reducer) applyGuardianSave(state models.AppState, a GuardianSave) models.AppState {
	next := state.Clone()
	if next.Guardians == nil {
		next.Guardians = map[string]models.Guardian{}
	}
	g := a.Guardian
	g.Sound = models.GuardianKey(g.Sound)
	if g.Sound == "" {
		return state
	}
	next.Guardians[g.Sound] = g
	return next
}

func (r *Reducer) applySettingsUpdate(state models.AppState, a SettingsUpdate) models.AppState {
	next := state.Clone()
	next.Settings = a.Settings.Normalize()
	return next
}

func (r *Reducer) applyReset(state models.AppState) models.AppState {
	next := models.NewAppState(r.now())
	next.Settings = state.Settings
	return next
}

func (r *Reducer) applyNotificationsDismiss(state models.AppState) models.AppState {
	next := state.Clone()
	next.Profile.Notifications = nil
	return next
}

// propagateUnlocks walks the map left to right: the first node is always
// unlocked, and each later node unlocks once its predecessor has reached the
// unlock accuracy or mastery. Unlocking is monotonic; nodes never re-lock here.
func propagateUnlocks(nodes []models.SkillNode) {
	for i := range nodes {
		if i == 0 {
			nodes[i].IsLocked = false
			continue
		}
		if !nodes[i].IsLocked {
			continue
		}
		prev := nodes[i-1]
		if prev.Accuracy >= models.UnlockAccuracy || prev.IsMastered {
			nodes[i].IsLocked = false
		}
	}
}

func masteryLevel(nodes []models.SkillNode) int {
	mastered := 0
	for _, n := range nodes {
		if n.IsMastered {
			mastered++
		}
	}
	return mastered/2 + 1
}

// mirrorTotals rewrites the legacy top-level counters from the profile, which
// is the single source of truth for lifetime rewards.
func mirrorTotals(state models.AppState) models.AppState {
	state.TotalStars = state.Profile.TotalStars
	state.TotalSoundShards = state.Profile.TotalSoundShards
	state.TotalMagicSeeds = state.Profile.TotalMagicSeeds
	return state
}

// startOfDay truncates a time to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
