package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"phonicsquest/internal/database"
	"phonicsquest/internal/models"
)

// StateRepository persists one AppState snapshot per kid as a versioned JSON
// payload. Saves are best-effort: callers log and swallow failures so a quest
// is never interrupted by storage trouble.
type StateRepository struct {
	db *database.DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *database.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Save upserts the snapshot for a kid
func (r *StateRepository) Save(kidID int64, state models.AppState) error {
	state.SchemaVersion = models.CurrentSchemaVersion
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	update := `
		UPDATE app_state
		SET version = ?, payload = ?, updated_at = ?
		WHERE kid_id = ?
	`
	result, err := r.db.Exec(update, models.CurrentSchemaVersion, string(payload), time.Now(), kidID)
	if err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	insert := `
		INSERT INTO app_state (kid_id, version, payload)
		VALUES (?, ?, ?)
	`
	if _, err := r.db.Exec(insert, kidID, models.CurrentSchemaVersion, string(payload)); err != nil {
		return fmt.Errorf("failed to insert state: %w", err)
	}
	return nil
}

// Load returns the kid's snapshot, or nil when none has been saved yet.
// Snapshots written by older schema versions are normalized field by field;
// a loadable-but-partial payload never blocks app start.
func (r *StateRepository) Load(kidID int64) (*models.AppState, error) {
	query := `
		SELECT payload
		FROM app_state
		WHERE kid_id = ?
	`

	var payload string
	err := r.db.QueryRow(query, kidID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	state := MigrateState([]byte(payload), time.Now())
	return &state, nil
}
