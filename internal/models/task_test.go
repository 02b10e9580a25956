package models

import "testing"

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{
			name: "valid letter-sound",
			task: Task{Kind: ActivityLetterSound, Prompt: "Tap /s/.", Options: []string{"s", "t"}, CorrectIndex: 0},
		},
		{
			name:    "missing prompt",
			task:    Task{Kind: ActivityLetterSound, Options: []string{"s", "t"}, CorrectIndex: 0},
			wantErr: true,
		},
		{
			name:    "too few options",
			task:    Task{Kind: ActivityLetterSound, Prompt: "Tap /s/.", Options: []string{"s"}, CorrectIndex: 0},
			wantErr: true,
		},
		{
			name:    "correct index out of range",
			task:    Task{Kind: ActivityLetterSound, Prompt: "Tap /s/.", Options: []string{"s", "t"}, CorrectIndex: 2},
			wantErr: true,
		},
		{
			name:    "negative correct index",
			task:    Task{Kind: ActivityLetterSound, Prompt: "Tap /s/.", Options: []string{"s", "t"}, CorrectIndex: -1},
			wantErr: true,
		},
		{
			name: "letter-trace needs no options",
			task: Task{Kind: ActivityLetterTrace, Prompt: "Trace it.", TraceLetter: "m"},
		},
		{
			name:    "letter-trace without letter",
			task:    Task{Kind: ActivityLetterTrace, Prompt: "Trace it."},
			wantErr: true,
		},
		{
			name: "word-builder with parts",
			task: Task{Kind: ActivityWordBuilder, Prompt: "Build it.", TargetWord: "cat", WordParts: []string{"c", "at"}},
		},
		{
			name:    "word-builder with one part",
			task:    Task{Kind: ActivityWordBuilder, Prompt: "Build it.", TargetWord: "cat", WordParts: []string{"cat"}},
			wantErr: true,
		},
		{
			name:    "sound-match without target sound",
			task:    Task{Kind: ActivitySoundMatch, Prompt: "Which word?", Options: []string{"map", "sun"}, CorrectIndex: 0},
			wantErr: true,
		},
		{
			name:    "blending without target word",
			task:    Task{Kind: ActivityBlending, Prompt: "Blend it.", Options: []string{"cat", "hat"}, CorrectIndex: 0},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			task:    Task{Kind: ActivityKind("karaoke"), Prompt: "Sing!", Options: []string{"a", "b"}, CorrectIndex: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTaskRejectsInvalid(t *testing.T) {
	if _, err := NewTask(ActivityLetterSound, "", []string{"a", "b"}, 0); err == nil {
		t.Error("NewTask accepted an empty prompt")
	}
	task, err := NewTask(ActivityRhymeTime, "Which rhymes?", []string{"cat", "dog"}, 0)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	if task.Kind != ActivityRhymeTime {
		t.Errorf("kind = %s", task.Kind)
	}
}
