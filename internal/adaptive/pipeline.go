package adaptive

import (
	"context"
	"log"
	"sync"
	"time"

	"phonicsquest/internal/content"
	"phonicsquest/internal/models"
)

// PlanGenerator produces an AI-authored task plan for a skill. It may fail,
// time out, or return nothing; the pipeline treats all of those as "keep the
// local list".
type PlanGenerator interface {
	GenerateTaskPlan(ctx context.Context, level models.SkillLevel, persona, difficulty string) ([]models.Task, error)
}

// Connectivity reports whether the AI service is worth contacting at all.
type Connectivity func() bool

// DefaultEnhanceTimeout bounds the AI enhancement fetch so the transient
// loading framing never lingers; the local list is already playable.
const DefaultEnhanceTimeout = 6 * time.Second

// Pipeline produces the task list for the current skill. The local list is
// generated synchronously and is immediately playable; one asynchronous AI
// enhancement may then replace it via the merge policy. A new Load cancels
// interest in any stale in-flight result.
type Pipeline struct {
	gen     PlanGenerator
	online  Connectivity
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
	tasks      []models.Task
	enhancing  bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewPipeline creates a pipeline. gen may be nil (AI disabled); online may be
// nil (assume reachable); timeout <= 0 uses DefaultEnhanceTimeout.
func NewPipeline(gen PlanGenerator, online Connectivity, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultEnhanceTimeout
	}
	closed := make(chan struct{})
	close(closed)
	return &Pipeline{gen: gen, online: online, timeout: timeout, done: closed}
}

// Load builds the task list for a skill node. It returns the locally generated
// list immediately and, when connectivity allows, starts one background
// enhancement attempt tagged with the current generation. Any earlier attempt
// still in flight is abandoned: its result will no longer match the
// generation and is dropped.
func (p *Pipeline) Load(node models.SkillNode, persona string, settings models.Settings, streak int) []models.Task {
	local := content.GenerateTasks(node, settings)

	p.mu.Lock()
	p.generation++
	gen := p.generation
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.tasks = local
	p.enhancing = false
	p.done = nil

	if p.gen == nil || (p.online != nil && !p.online()) {
		closed := make(chan struct{})
		close(closed)
		p.done = closed
		p.mu.Unlock()
		return local
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.cancel = cancel
	p.enhancing = true
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	difficulty := EffectiveDifficulty(settings, node, streak)
	go p.enhance(ctx, cancel, gen, node.Level, persona, difficulty, local, done)

	return local
}

func (p *Pipeline) enhance(ctx context.Context, cancel context.CancelFunc, gen uint64, level models.SkillLevel, persona, difficulty string, local []models.Task, done chan struct{}) {
	defer close(done)
	defer cancel()

	ai, err := p.gen.GenerateTaskPlan(ctx, level, persona, difficulty)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		// The player moved on; this result belongs to a previous skill or
		// settings and must not overwrite the active list.
		return
	}
	p.enhancing = false

	if err != nil {
		// Silent fallback: a child-facing quest is never interrupted by a
		// content-generation failure.
		log.Printf("task enhancement skipped: %v", err)
		return
	}
	if len(ai) == 0 {
		return
	}
	p.tasks = MergeTasks(local, ai)
}

// Invalidate cancels interest in any in-flight enhancement without touching
// the active task list. Used when settings change mid-quest: a result fetched
// under the old difficulty no longer matches the generation and is dropped.
func (p *Pipeline) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.enhancing = false
}

// Tasks returns the currently active task list.
func (p *Pipeline) Tasks() []models.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tasks
}

// Enhancing reports whether an enhancement attempt is still in flight.
func (p *Pipeline) Enhancing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enhancing
}

// EnhanceDone returns a channel closed when the current enhancement attempt
// settles (success, failure, or none started).
func (p *Pipeline) EnhanceDone() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// EffectiveDifficulty starts from the configured baseline and forces the
// easiest tier when the child is visibly struggling: a consecutive-error
// streak of two or more, or a node with several attempts and a best accuracy
// still under half. Recomputed on every fetch, never cached.
func EffectiveDifficulty(settings models.Settings, node models.SkillNode, streak int) string {
	difficulty := settings.Normalize().Difficulty
	if streak >= 2 {
		return models.DifficultyEasy
	}
	if node.Attempts > 3 && node.Accuracy < 50 {
		return models.DifficultyEasy
	}
	return difficulty
}
