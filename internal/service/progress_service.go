package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"phonicsquest/internal/models"
	"phonicsquest/internal/progression"
	"phonicsquest/internal/telemetry"
)

// StateStore persists one snapshot per kid. Satisfied by
// repository.StateRepository.
type StateStore interface {
	Load(kidID int64) (*models.AppState, error)
	Save(kidID int64, state models.AppState) error
}

// ProgressService owns each kid's saved game state. All changes go through
// the progression reducer so the update rules live in one place, and writes
// for one kid are serialized so concurrent requests never drop each other's
// updates.
type ProgressService struct {
	store   StateStore
	reducer *progression.Reducer
	tracker *telemetry.Tracker

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewProgressService creates a new progress service. The tracker may be nil
// when telemetry is disabled.
func NewProgressService(store StateStore, tracker *telemetry.Tracker) *ProgressService {
	return &ProgressService{
		store:   store,
		reducer: progression.NewReducer(nil),
		tracker: tracker,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// GetState loads a kid's saved state, or a fresh install state when the kid
// has never played
func (s *ProgressService) GetState(kidID int64) (models.AppState, error) {
	state, err := s.store.Load(kidID)
	if err != nil {
		return models.AppState{}, fmt.Errorf("failed to load state: %w", err)
	}
	if state == nil {
		return models.NewAppState(time.Now()), nil
	}
	return *state, nil
}

// Apply runs an action through the reducer and persists the result. The
// load-reduce-save cycle holds the kid's lock, so actions land in the order
// they arrive and no concurrent writer overwrites another's snapshot. A
// failed save is logged and swallowed: the returned state is still the
// correct new state and the next successful save catches up.
func (s *ProgressService) Apply(kidID int64, action progression.Action) (models.AppState, error) {
	lock := s.kidLock(kidID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.GetState(kidID)
	if err != nil {
		return models.AppState{}, err
	}

	next := s.reducer.Apply(state, action)

	if err := s.store.Save(kidID, next); err != nil {
		log.Printf("Warning: failed to save state for kid %d: %v", kidID, err)
	}

	s.track(kidID, action)
	return next, nil
}

// kidLock returns the mutex serializing writes for one kid, creating it on
// first use. Locks are never reclaimed; the map grows with the number of
// kids seen since start, which is small.
func (s *ProgressService) kidLock(kidID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[kidID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[kidID] = lock
	}
	return lock
}

func (s *ProgressService) track(kidID int64, action progression.Action) {
	if s.tracker == nil {
		return
	}
	switch a := action.(type) {
	case progression.GameComplete:
		s.tracker.Track(kidID, "game_complete", a.Session.SkillID, a.Session.Accuracy)
	case progression.PlacementComplete:
		s.tracker.Track(kidID, "placement_complete", "", a.Score)
	case progression.DailyChallengeComplete:
		s.tracker.Track(kidID, "daily_challenge", "", 0)
	case progression.ResetProgress:
		s.tracker.Track(kidID, "reset_progress", "", 0)
	}
}
