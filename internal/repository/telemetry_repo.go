package repository

import (
	"strings"
	"time"

	"phonicsquest/internal/database"
)

// TelemetryEvent is one queued gameplay event awaiting delivery.
type TelemetryEvent struct {
	ID        int64     `json:"-"`
	KidID     int64     `json:"kidId"`
	EventType string    `json:"eventType"`
	SkillID   string    `json:"skillId,omitempty"`
	Accuracy  int       `json:"accuracy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TelemetryRepository persists the telemetry queue so events survive a
// restart until a flush delivers them.
type TelemetryRepository struct {
	db *database.DB
}

// NewTelemetryRepository creates a new telemetry repository
func NewTelemetryRepository(db *database.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// Enqueue appends an event to the queue
func (r *TelemetryRepository) Enqueue(event TelemetryEvent) error {
	query := `
		INSERT INTO telemetry_events (kid_id, event_type, skill_id, accuracy)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, event.KidID, event.EventType, event.SkillID, event.Accuracy)
	return err
}

// NextBatch returns up to limit of the oldest queued events
func (r *TelemetryRepository) NextBatch(limit int) ([]TelemetryEvent, error) {
	query := `
		SELECT id, kid_id, event_type, skill_id, accuracy, created_at
		FROM telemetry_events
		ORDER BY id
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []TelemetryEvent
	for rows.Next() {
		var e TelemetryEvent
		if err := rows.Scan(&e.ID, &e.KidID, &e.EventType, &e.SkillID, &e.Accuracy, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteBatch removes delivered events from the queue
func (r *TelemetryRepository) DeleteBatch(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := "DELETE FROM telemetry_events WHERE id IN (" + strings.Join(placeholders, ", ") + ")"
	_, err := r.db.Exec(query, args...)
	return err
}
