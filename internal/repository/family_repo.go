package repository

import (
	"crypto/rand"
	"database/sql"
	"math/big"

	"phonicsquest/internal/database"
	"phonicsquest/internal/models"
)

// FamilyRepository handles family database operations
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a family with a generated join code and adds the
// creator as its first parent
func (r *FamilyRepository) CreateFamily(name string, creatorUserID int64) (*models.Family, error) {
	code, err := generateFamilyCode()
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO families (name, code, created_by)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, name, code, creatorUserID)
	if err != nil {
		return nil, err
	}

	if err := r.AddFamilyMember(id, creatorUserID, "parent"); err != nil {
		return nil, err
	}

	return r.GetFamilyByID(id)
}

// GetFamilyByID retrieves a family by ID, or nil when absent
func (r *FamilyRepository) GetFamilyByID(id int64) (*models.Family, error) {
	query := `
		SELECT id, name, code, created_by, created_at
		FROM families
		WHERE id = ?
	`
	return r.scanFamily(r.db.QueryRow(query, id))
}

// GetFamilyByCode retrieves a family by its join code, or nil when absent
func (r *FamilyRepository) GetFamilyByCode(code string) (*models.Family, error) {
	query := `
		SELECT id, name, code, created_by, created_at
		FROM families
		WHERE code = ?
	`
	return r.scanFamily(r.db.QueryRow(query, code))
}

func (r *FamilyRepository) scanFamily(row *sql.Row) (*models.Family, error) {
	family := &models.Family{}
	err := row.Scan(
		&family.ID,
		&family.Name,
		&family.Code,
		&family.CreatedBy,
		&family.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return family, nil
}

// GetUserFamilies retrieves all families a user belongs to
func (r *FamilyRepository) GetUserFamilies(userID int64) ([]models.Family, error) {
	query := `
		SELECT f.id, f.name, f.code, f.created_by, f.created_at
		FROM families f
		JOIN family_members fm ON fm.family_id = f.id
		WHERE fm.user_id = ?
		ORDER BY f.created_at
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var f models.Family
		if err := rows.Scan(&f.ID, &f.Name, &f.Code, &f.CreatedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		families = append(families, f)
	}
	return families, rows.Err()
}

// IsFamilyMember checks whether a user belongs to a family
func (r *FamilyRepository) IsFamilyMember(userID, familyID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM family_members WHERE user_id = ? AND family_id = ?"
	if err := r.db.QueryRow(query, userID, familyID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddFamilyMember adds a user to a family
func (r *FamilyRepository) AddFamilyMember(familyID, userID int64, role string) error {
	query := `
		INSERT INTO family_members (family_id, user_id, role)
		VALUES (?, ?, ?)
	`
	_, err := r.db.Exec(query, familyID, userID, role)
	return err
}

// RemoveUserFromFamily removes a user from a family
func (r *FamilyRepository) RemoveUserFromFamily(userID, familyID int64) error {
	query := "DELETE FROM family_members WHERE user_id = ? AND family_id = ?"
	_, err := r.db.Exec(query, userID, familyID)
	return err
}

// generateFamilyCode produces an 8-character join code that avoids
// easily-confused characters
func generateFamilyCode() (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	code := make([]byte, 8)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		code[i] = chars[num.Int64()]
	}
	return string(code), nil
}
