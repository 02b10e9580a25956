package ai

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	"phonicsquest/internal/content"
	"phonicsquest/internal/models"
)

// Generator produces quest content from the Gemini API. Every caller must
// have a non-AI fallback: the generator may fail, return nothing, or be
// disabled entirely when no API key is configured.
type Generator struct {
	client     *genai.Client
	model      string
	imageModel string
	imageDir   string
}

// NewGenerator creates a Gemini-backed content generator.
func NewGenerator(apiKey, model, imageModel, imageDir string) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if imageModel == "" {
		imageModel = "imagen-3.0-generate-002"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Generator{
		client:     client,
		model:      model,
		imageModel: imageModel,
		imageDir:   imageDir,
	}, nil
}

// taskPlanItem is the JSON shape the model is asked to produce.
type taskPlanItem struct {
	Kind         string   `json:"kind"`
	Prompt       string   `json:"prompt"`
	Narrative    string   `json:"narrative"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	TargetWord   string   `json:"targetWord"`
	WordParts    []string `json:"wordParts"`
	TraceLetter  string   `json:"traceLetter"`
	TargetSound  string   `json:"targetSound"`
}

// GenerateTaskPlan asks Gemini for a quest's worth of tasks for a skill level,
// framed by the tutor persona at the requested difficulty. Malformed items
// are dropped rather than surfaced; an all-malformed response returns an
// empty plan, which callers treat as "keep the local list".
func (g *Generator) GenerateTaskPlan(ctx context.Context, level models.SkillLevel, persona, difficulty string) ([]models.Task, error) {
	c := content.ForLevel(level)
	prompt := buildPlanPrompt(c, persona, difficulty)

	resp, err := callWithRetry(ctx, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			SystemInstruction: genai.NewContentFromText(
				"You write phonics mini-game tasks for young children. Respond only with the requested JSON array.",
				genai.RoleUser,
			),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("task plan generation failed: %w", err)
	}

	return ParseTaskPlan(resp.Text())
}

// ParseTaskPlan decodes a model response into validated tasks, dropping any
// item that fails construction rules.
func ParseTaskPlan(raw string) ([]models.Task, error) {
	raw = stripCodeFence(raw)

	var items []taskPlanItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("malformed task plan: %w", err)
	}

	tasks := make([]models.Task, 0, len(items))
	for _, item := range items {
		t := models.Task{
			Kind:         models.ActivityKind(item.Kind),
			Prompt:       item.Prompt,
			Narrative:    item.Narrative,
			Options:      item.Options,
			CorrectIndex: item.CorrectIndex,
			TargetWord:   item.TargetWord,
			WordParts:    item.WordParts,
			TraceLetter:  item.TraceLetter,
			TargetSound:  item.TargetSound,
		}
		if err := t.Validate(); err != nil {
			continue
		}
		tasks = append(tasks, t)
		if len(tasks) == content.QuestLength {
			break
		}
	}
	return tasks, nil
}

// GenerateVisual renders an illustration for a prompt and returns a file
// reference, or empty when generation is unavailable. Images are cached by
// prompt hash like the audio files are.
func (g *Generator) GenerateVisual(ctx context.Context, prompt string) (string, error) {
	if g.imageDir == "" {
		return "", nil
	}

	filename := fmt.Sprintf("visual_%s.png", hashPrompt(prompt))
	path := filepath.Join(g.imageDir, filename)
	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return "", fmt.Errorf("visual generation failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", nil
	}

	if err := os.WriteFile(path, resp.GeneratedImages[0].Image.ImageBytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write visual file: %w", err)
	}
	return filename, nil
}

func buildPlanPrompt(c content.LevelContent, persona, difficulty string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d phonics tasks for the %q skill level.\n", content.QuestLength, c.Level)
	fmt.Fprintf(&b, "Phonics rule: %s\n", c.Rule)
	fmt.Fprintf(&b, "Usable sounds: %s\n", strings.Join(c.Sounds, ", "))
	fmt.Fprintf(&b, "Usable words: %s\n", strings.Join(c.Words, ", "))
	fmt.Fprintf(&b, "Difficulty: %s. Narrator persona: %s (use it for the narrative framing only).\n", difficulty, persona)
	b.WriteString(`Return a JSON array where each element has: "kind" (one of sound-match, letter-sound, word-builder, blending, sight-word, rhyme-time, letter-trace), "prompt", "narrative", "options" (2-4 strings), "correctIndex", and when relevant "targetWord", "wordParts", "traceLetter", "targetSound".`)
	return b.String()
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func hashPrompt(prompt string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(prompt))))
	return hex.EncodeToString(sum[:8])
}
