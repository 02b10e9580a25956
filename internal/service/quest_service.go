package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"phonicsquest/internal/adaptive"
	"phonicsquest/internal/models"
	"phonicsquest/internal/progression"
)

var (
	ErrNoActiveQuest  = errors.New("no active quest")
	ErrSkillLocked    = errors.New("skill is locked")
	ErrUnknownSkill   = errors.New("unknown skill")
	ErrQuestExhausted = errors.New("all quest tasks already answered")
)

// questRun is one in-flight quest for one kid. Runs live in memory only;
// an abandoned run is simply replaced the next time the kid starts a quest.
// The run's own mutex guards the recorder and task cursor so concurrent
// answer and hint requests for the same kid never race.
type questRun struct {
	skillID  string
	pipeline *adaptive.Pipeline

	mu       sync.Mutex
	recorder *progression.Recorder
	index    int
}

// QuestStatus is the client view of an active quest
type QuestStatus struct {
	SkillID    string          `json:"skillId"`
	Tasks      []models.Task   `json:"tasks"`
	TaskIndex  int             `json:"taskIndex"`
	Difficulty string          `json:"difficulty"`
	Scaled     adaptive.Scaled `json:"scaled"`
	Enhancing  bool            `json:"enhancing"`
	NextPrompt string          `json:"nextPrompt"`
	Streak     int             `json:"streak"`
}

// AnswerResult is the outcome of a single submitted answer
type AnswerResult struct {
	Correct    bool            `json:"correct"`
	Streak     int             `json:"streak"`
	NextPrompt string          `json:"nextPrompt,omitempty"`
	Scaled     adaptive.Scaled `json:"scaled"`
	Done       bool            `json:"done"`
}

// QuestService runs active quests. It composes the task pipeline, the
// session recorder and the progression reducer behind one flow: start,
// answer, hint, complete.
type QuestService struct {
	progress    *ProgressService
	newPipeline func() *adaptive.Pipeline

	mu   sync.Mutex
	runs map[int64]*questRun
}

// NewQuestService creates a new quest service. newPipeline builds a fresh
// pipeline per quest so each run carries its own generation counter.
func NewQuestService(progress *ProgressService, newPipeline func() *adaptive.Pipeline) *QuestService {
	return &QuestService{
		progress:    progress,
		newPipeline: newPipeline,
		runs:        make(map[int64]*questRun),
	}
}

// StartQuest begins a quest on a skill node for a kid. Local tasks are
// available immediately; AI enhancement continues in the background.
func (s *QuestService) StartQuest(kidID int64, skillID string) (*QuestStatus, error) {
	state, err := s.progress.GetState(kidID)
	if err != nil {
		return nil, err
	}

	node := state.NodeByID(skillID)
	if node == nil {
		return nil, ErrUnknownSkill
	}
	if node.IsLocked {
		return nil, ErrSkillLocked
	}

	// The first fetch inherits the error streak the kid ended with on this
	// node last time, so a struggling node starts at the easier tier instead
	// of waiting for errors to pile up again.
	pipeline := s.newPipeline()
	pipeline.Load(*node, state.ActiveCharacter, state.Settings, lastErrorStreak(state, skillID))

	run := &questRun{
		skillID:  skillID,
		pipeline: pipeline,
		recorder: progression.NewRecorder(skillID, time.Now()),
	}

	s.mu.Lock()
	s.runs[kidID] = run
	s.mu.Unlock()

	return s.status(run, state.Settings), nil
}

// Quest returns the current quest status for a kid
func (s *QuestService) Quest(kidID int64) (*QuestStatus, error) {
	run, err := s.run(kidID)
	if err != nil {
		return nil, err
	}

	state, err := s.progress.GetState(kidID)
	if err != nil {
		return nil, err
	}
	return s.status(run, state.Settings), nil
}

// SubmitAnswer records an answer to the current task and moves to the next
// one. The response echoes the comfort adjustments for the next task so the
// client can slow speech and soften prompts without re-fetching the quest.
func (s *QuestService) SubmitAnswer(kidID int64, answer string, answerIndex, responseMs int) (*AnswerResult, error) {
	run, err := s.run(kidID)
	if err != nil {
		return nil, err
	}

	state, err := s.progress.GetState(kidID)
	if err != nil {
		return nil, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()

	tasks := run.pipeline.Tasks()
	if run.index >= len(tasks) {
		return nil, ErrQuestExhausted
	}
	task := tasks[run.index]

	correct := checkAnswer(task, answer, answerIndex)
	run.recorder.RecordAnswer(correct, responseMs)
	run.index++

	streak := run.recorder.Streak()
	result := &AnswerResult{
		Correct: correct,
		Streak:  streak,
		Scaled:  adaptive.ScaleDifficulty(state.Settings, streak),
		Done:    run.index >= len(tasks),
	}
	if !result.Done {
		next := tasks[run.index]
		result.NextPrompt = adaptive.ScaffoldPrompt(next.Prompt, streak)
	}
	return result, nil
}

// RecordHint notes that the kid asked for a hint on the current task
func (s *QuestService) RecordHint(kidID int64) error {
	run, err := s.run(kidID)
	if err != nil {
		return err
	}
	run.mu.Lock()
	run.recorder.RecordHint()
	run.mu.Unlock()
	return nil
}

// InvalidateEnhancement abandons any in-flight AI enhancement for the kid's
// active quest. Called when settings change mid-quest so a task plan fetched
// under the old difficulty never lands.
func (s *QuestService) InvalidateEnhancement(kidID int64) {
	s.mu.Lock()
	run, ok := s.runs[kidID]
	s.mu.Unlock()
	if ok {
		run.pipeline.Invalidate()
	}
}

// CompleteQuest finishes the active quest, folds the session into the kid's
// saved progress and returns the updated state alongside the session record
func (s *QuestService) CompleteQuest(kidID int64) (models.AppState, *models.GameSession, error) {
	s.mu.Lock()
	run, ok := s.runs[kidID]
	if ok {
		delete(s.runs, kidID)
	}
	s.mu.Unlock()

	if !ok {
		return models.AppState{}, nil, ErrNoActiveQuest
	}

	run.mu.Lock()
	answered := run.recorder.Answered()
	session := run.recorder.Build(time.Now())
	run.mu.Unlock()

	if answered == 0 {
		return models.AppState{}, nil, fmt.Errorf("quest has no answered tasks")
	}
	state, err := s.progress.Apply(kidID, progression.GameComplete{Session: session})
	if err != nil {
		return models.AppState{}, nil, err
	}

	for i := range state.Sessions {
		if state.Sessions[i].ID == session.ID {
			return state, &state.Sessions[i], nil
		}
	}
	return state, &session, nil
}

// AbandonQuest drops a kid's active quest without recording anything
func (s *QuestService) AbandonQuest(kidID int64) {
	s.mu.Lock()
	delete(s.runs, kidID)
	s.mu.Unlock()
}

func (s *QuestService) run(kidID int64) (*questRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[kidID]
	if !ok {
		return nil, ErrNoActiveQuest
	}
	return run, nil
}

func (s *QuestService) status(run *questRun, settings models.Settings) *QuestStatus {
	run.mu.Lock()
	defer run.mu.Unlock()

	streak := run.recorder.Streak()
	tasks := run.pipeline.Tasks()

	status := &QuestStatus{
		SkillID:    run.skillID,
		Tasks:      tasks,
		TaskIndex:  run.index,
		Difficulty: settings.Difficulty,
		Scaled:     adaptive.ScaleDifficulty(settings, streak),
		Enhancing:  run.pipeline.Enhancing(),
		Streak:     streak,
	}
	if run.index < len(tasks) {
		status.NextPrompt = adaptive.ScaffoldPrompt(tasks[run.index].Prompt, streak)
	}
	return status
}

// lastErrorStreak returns the error streak the kid's most recent session on
// the skill ended with, or zero when the node has never been played. Sessions
// are stored most recent first.
func lastErrorStreak(state models.AppState, skillID string) int {
	for _, session := range state.Sessions {
		if session.SkillID == skillID {
			return session.ErrorStreak
		}
	}
	return 0
}

// checkAnswer grades one answer against its task. Option activities grade by
// index; construction activities grade by the assembled text.
func checkAnswer(task models.Task, answer string, answerIndex int) bool {
	switch task.Kind {
	case models.ActivityWordBuilder:
		return strings.EqualFold(strings.TrimSpace(answer), task.TargetWord)
	case models.ActivityLetterTrace:
		return strings.EqualFold(strings.TrimSpace(answer), task.TraceLetter)
	default:
		return answerIndex == task.CorrectIndex
	}
}
