package repository

import (
	"database/sql"
	"errors"
	"time"

	"phonicsquest/internal/database"
	"phonicsquest/internal/models"
)

// ErrKidSessionNotFound is returned for missing or expired kid sessions.
var ErrKidSessionNotFound = errors.New("kid session not found")

// KidRepository handles kid profile database operations
type KidRepository struct {
	db *database.DB
}

// NewKidRepository creates a new kid repository
func NewKidRepository(db *database.DB) *KidRepository {
	return &KidRepository{db: db}
}

// CreateKid creates a new kid profile
func (r *KidRepository) CreateKid(familyID int64, name, username, password, avatarColor string) (*models.Kid, error) {
	query := `
		INSERT INTO kids (family_id, name, username, password, avatar_color)
		VALUES (?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, familyID, name, username, password, avatarColor)
	if err != nil {
		return nil, err
	}

	return r.GetKidByID(id)
}

// GetKidByID retrieves a kid by ID, or nil when absent
func (r *KidRepository) GetKidByID(id int64) (*models.Kid, error) {
	query := `
		SELECT id, family_id, name, username, password, avatar_color, created_at, updated_at
		FROM kids
		WHERE id = ?
	`
	return r.scanKid(r.db.QueryRow(query, id))
}

// GetKidByUsername retrieves a kid by username, or nil when absent
func (r *KidRepository) GetKidByUsername(username string) (*models.Kid, error) {
	query := `
		SELECT id, family_id, name, username, password, avatar_color, created_at, updated_at
		FROM kids
		WHERE username = ?
	`
	return r.scanKid(r.db.QueryRow(query, username))
}

func (r *KidRepository) scanKid(row *sql.Row) (*models.Kid, error) {
	kid := &models.Kid{}
	err := row.Scan(
		&kid.ID,
		&kid.FamilyID,
		&kid.Name,
		&kid.Username,
		&kid.Password,
		&kid.AvatarColor,
		&kid.CreatedAt,
		&kid.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return kid, nil
}

// GetFamilyKids retrieves all kids in a family
func (r *KidRepository) GetFamilyKids(familyID int64) ([]models.Kid, error) {
	query := `
		SELECT id, family_id, name, username, password, avatar_color, created_at, updated_at
		FROM kids
		WHERE family_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kids []models.Kid
	for rows.Next() {
		var k models.Kid
		err := rows.Scan(&k.ID, &k.FamilyID, &k.Name, &k.Username, &k.Password,
			&k.AvatarColor, &k.CreatedAt, &k.UpdatedAt)
		if err != nil {
			return nil, err
		}
		kids = append(kids, k)
	}
	return kids, rows.Err()
}

// UpdateKid updates a kid's name and avatar color
func (r *KidRepository) UpdateKid(kidID int64, name, avatarColor string) error {
	query := `
		UPDATE kids
		SET name = ?, avatar_color = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, name, avatarColor, time.Now(), kidID)
	return err
}

// UpdateKidPassword replaces a kid's password
func (r *KidRepository) UpdateKidPassword(kidID int64, password string) error {
	query := `
		UPDATE kids
		SET password = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, password, time.Now(), kidID)
	return err
}

// DeleteKid deletes a kid profile and its state snapshot
func (r *KidRepository) DeleteKid(kidID int64) error {
	if _, err := r.db.Exec("DELETE FROM app_state WHERE kid_id = ?", kidID); err != nil {
		return err
	}
	_, err := r.db.Exec("DELETE FROM kids WHERE id = ?", kidID)
	return err
}

// CreateKidSession stores a kid login session
func (r *KidRepository) CreateKidSession(sessionID string, kidID int64, expiresAt time.Time) error {
	query := `
		INSERT INTO kid_sessions (id, kid_id, expires_at)
		VALUES (?, ?, ?)
	`
	_, err := r.db.Exec(query, sessionID, kidID, expiresAt)
	return err
}

// GetKidSession returns the kid ID for a live session
func (r *KidRepository) GetKidSession(sessionID string) (int64, error) {
	query := `
		SELECT kid_id
		FROM kid_sessions
		WHERE id = ? AND expires_at > ?
	`

	var kidID int64
	err := r.db.QueryRow(query, sessionID, time.Now()).Scan(&kidID)
	if err == sql.ErrNoRows {
		return 0, ErrKidSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	return kidID, nil
}

// DeleteKidSession removes a kid session
func (r *KidRepository) DeleteKidSession(sessionID string) error {
	_, err := r.db.Exec("DELETE FROM kid_sessions WHERE id = ?", sessionID)
	return err
}

// DeleteExpiredKidSessions removes all kid sessions past their expiry
func (r *KidRepository) DeleteExpiredKidSessions() error {
	_, err := r.db.Exec("DELETE FROM kid_sessions WHERE expires_at < ?", time.Now())
	return err
}
