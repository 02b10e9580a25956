package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"phonicsquest/internal/repository"
)

// Sink delivers a batch of events to wherever telemetry goes.
type Sink interface {
	Deliver(ctx context.Context, events []repository.TelemetryEvent) error
}

// HTTPSink POSTs event batches as JSON to a collector endpoint.
type HTTPSink struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSink creates a sink posting to the given endpoint
func NewHTTPSink(endpoint string) *HTTPSink {
	return &HTTPSink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Deliver posts the batch to the collector
func (s *HTTPSink) Deliver(ctx context.Context, events []repository.TelemetryEvent) error {
	body, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver telemetry batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("telemetry collector returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSink writes batches to the application log. Used when no collector
// endpoint is configured so gameplay events still leave a trace.
type LogSink struct{}

// Deliver logs each event
func (s *LogSink) Deliver(ctx context.Context, events []repository.TelemetryEvent) error {
	for _, e := range events {
		log.Printf("telemetry: kid=%d type=%s skill=%s accuracy=%d", e.KidID, e.EventType, e.SkillID, e.Accuracy)
	}
	return nil
}

// Tracker queues gameplay events and flushes them to a sink in the
// background. Tracking is fire and forget: a failed enqueue is logged and
// never surfaces to the caller, so analytics trouble cannot interrupt play.
type Tracker struct {
	repo      *repository.TelemetryRepository
	sink      Sink
	interval  time.Duration
	batchSize int
}

// NewTracker creates a tracker flushing every interval
func NewTracker(repo *repository.TelemetryRepository, sink Sink, interval time.Duration) *Tracker {
	return &Tracker{
		repo:      repo,
		sink:      sink,
		interval:  interval,
		batchSize: 100,
	}
}

// Track queues a single event
func (t *Tracker) Track(kidID int64, eventType, skillID string, accuracy int) {
	event := repository.TelemetryEvent{
		KidID:     kidID,
		EventType: eventType,
		SkillID:   skillID,
		Accuracy:  accuracy,
		CreatedAt: time.Now(),
	}
	if err := t.repo.Enqueue(event); err != nil {
		log.Printf("Warning: failed to queue telemetry event: %v", err)
	}
}

// Run flushes the queue on a ticker until ctx is cancelled
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Flush(ctx); err != nil {
				log.Printf("Warning: telemetry flush failed: %v", err)
			}
		}
	}
}

// Flush delivers one batch of queued events and removes them on success.
// Events stay queued when delivery fails and are retried next flush.
func (t *Tracker) Flush(ctx context.Context) error {
	events, err := t.repo.NextBatch(t.batchSize)
	if err != nil {
		return fmt.Errorf("failed to read telemetry queue: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	if err := t.sink.Deliver(ctx, events); err != nil {
		return err
	}

	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return t.repo.DeleteBatch(ids)
}
