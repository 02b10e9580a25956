package models

import (
	"errors"
	"fmt"
)

// ActivityKind selects which mini-game renders a task.
type ActivityKind string

const (
	ActivitySoundMatch  ActivityKind = "sound-match"
	ActivityLetterSound ActivityKind = "letter-sound"
	ActivityWordBuilder ActivityKind = "word-builder"
	ActivityBlending    ActivityKind = "blending"
	ActivitySightWord   ActivityKind = "sight-word"
	ActivityRhymeTime   ActivityKind = "rhyme-time"
	ActivityLetterTrace ActivityKind = "letter-trace"
)

// Task is a single generated question for one mini-game. Tasks are ephemeral:
// generated per quest, never persisted. The kind-specific payload is validated
// at construction so renderers never need fallback defaults.
type Task struct {
	Kind         ActivityKind `json:"kind"`
	Prompt       string       `json:"prompt"`
	Narrative    string       `json:"narrative,omitempty"`
	Options      []string     `json:"options"`
	CorrectIndex int          `json:"correctIndex"`

	// Kind-specific payload.
	TargetWord  string   `json:"targetWord,omitempty"`
	WordParts   []string `json:"wordParts,omitempty"`
	TraceLetter string   `json:"traceLetter,omitempty"`
	TargetSound string   `json:"targetSound,omitempty"`
}

// NewTask builds a task and validates its payload for the given kind.
func NewTask(kind ActivityKind, prompt string, options []string, correctIndex int) (Task, error) {
	t := Task{
		Kind:         kind,
		Prompt:       prompt,
		Options:      options,
		CorrectIndex: correctIndex,
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Validate checks the structural rules common to every task plus the payload
// the task's mini-game requires.
func (t Task) Validate() error {
	if t.Prompt == "" {
		return errors.New("task prompt is required")
	}
	switch t.Kind {
	case ActivityLetterTrace:
		if t.TraceLetter == "" {
			return errors.New("letter-trace task requires a letter to trace")
		}
		return nil
	case ActivityWordBuilder:
		if t.TargetWord == "" {
			return errors.New("word-builder task requires a target word")
		}
		if len(t.WordParts) < 2 {
			return errors.New("word-builder task requires at least two word parts")
		}
		return nil
	case ActivitySoundMatch:
		if t.TargetSound == "" {
			return errors.New("sound-match task requires a target sound")
		}
	case ActivityBlending, ActivitySightWord:
		if t.TargetWord == "" {
			return fmt.Errorf("%s task requires a target word", t.Kind)
		}
	case ActivityLetterSound, ActivityRhymeTime:
		// Only the common option rules below.
	default:
		return fmt.Errorf("unknown activity kind: %q", t.Kind)
	}

	if len(t.Options) < 2 {
		return errors.New("task requires at least two answer options")
	}
	if t.CorrectIndex < 0 || t.CorrectIndex >= len(t.Options) {
		return fmt.Errorf("correct index %d out of range for %d options", t.CorrectIndex, len(t.Options))
	}
	return nil
}
