package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"phonicsquest/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Users      []UserBackup   `json:"users"`
	Families   []FamilyBackup `json:"families"`
	Kids       []KidBackup    `json:"kids"`
	States     []StateBackup  `json:"states"`
}

// UserBackup represents a parent account record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
}

// FamilyBackup represents a family record for backup
type FamilyBackup struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	Code      string               `json:"code"`
	CreatedBy int64                `json:"created_by"`
	CreatedAt time.Time            `json:"created_at"`
	Members   []FamilyMemberBackup `json:"members"`
}

// FamilyMemberBackup represents a family member record
type FamilyMemberBackup struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// KidBackup represents a kid record for backup
type KidBackup struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	AvatarColor string    `json:"avatar_color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StateBackup carries one kid's game snapshot as the raw stored payload, so
// restore round-trips exactly and migration happens on next load
type StateBackup struct {
	KidID     int64           `json:"kid_id"`
	Version   int             `json:"version"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return s.ExportToWriter(file)
}

// ExportToWriter writes a complete backup as JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	log.Println("Starting database export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportFamilies(backup); err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	if err := s.exportKids(backup); err != nil {
		return fmt.Errorf("failed to export kids: %w", err)
	}
	if err := s.exportStates(backup); err != nil {
		return fmt.Errorf("failed to export states: %w", err)
	}

	log.Printf("Exported %d users, %d families, %d kids, %d state snapshots",
		len(backup.Users), len(backup.Families), len(backup.Kids), len(backup.States))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a backup file into the database
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup from a JSON stream. Records are inserted
// in dependency order; import does not clear existing rows.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to parse backup file: %w", err)
	}

	log.Printf("Importing backup from %s (version %s)", backup.ExportedAt.Format(time.RFC3339), backup.Version)

	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importFamilies(backup.Families); err != nil {
		return fmt.Errorf("failed to import families: %w", err)
	}
	if err := s.importKids(backup.Kids); err != nil {
		return fmt.Errorf("failed to import kids: %w", err)
	}
	if err := s.importStates(backup.States); err != nil {
		return fmt.Errorf("failed to import states: %w", err)
	}

	log.Println("Import complete")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, email, password_hash, name,
			COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name, code, created_by, created_at FROM families ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.Code, &f.CreatedBy, &f.CreatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Families {
		memberRows, err := s.db.Query("SELECT user_id, role FROM family_members WHERE family_id = ?", backup.Families[i].ID)
		if err != nil {
			return err
		}
		for memberRows.Next() {
			var m FamilyMemberBackup
			if err := memberRows.Scan(&m.UserID, &m.Role); err != nil {
				memberRows.Close()
				return err
			}
			backup.Families[i].Members = append(backup.Families[i].Members, m)
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return err
		}
		memberRows.Close()
	}
	return nil
}

func (s *BackupService) exportKids(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, family_id, name, username, password, avatar_color, created_at, updated_at
		FROM kids ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var k KidBackup
		if err := rows.Scan(&k.ID, &k.FamilyID, &k.Name, &k.Username, &k.Password, &k.AvatarColor, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return err
		}
		backup.Kids = append(backup.Kids, k)
	}
	return rows.Err()
}

func (s *BackupService) exportStates(backup *BackupData) error {
	rows, err := s.db.Query("SELECT kid_id, version, payload, updated_at FROM app_state ORDER BY kid_id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st StateBackup
		var payload string
		if err := rows.Scan(&st.KidID, &st.Version, &payload, &st.UpdatedAt); err != nil {
			return err
		}
		st.Payload = json.RawMessage(payload)
		backup.States = append(backup.States, st)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	for _, u := range users {
		_, err := s.db.Exec(`
			INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, u.ID, u.Email, u.PasswordHash, u.Name, nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.CreatedAt)
		if err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importFamilies(families []FamilyBackup) error {
	for _, f := range families {
		_, err := s.db.Exec(`
			INSERT INTO families (id, name, code, created_by, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, f.ID, f.Name, f.Code, f.CreatedBy, f.CreatedAt)
		if err != nil {
			return fmt.Errorf("family %d: %w", f.ID, err)
		}

		for _, m := range f.Members {
			_, err := s.db.Exec(`
				INSERT INTO family_members (family_id, user_id, role)
				VALUES (?, ?, ?)
			`, f.ID, m.UserID, m.Role)
			if err != nil {
				return fmt.Errorf("family %d member %d: %w", f.ID, m.UserID, err)
			}
		}
	}
	return nil
}

func (s *BackupService) importKids(kids []KidBackup) error {
	for _, k := range kids {
		_, err := s.db.Exec(`
			INSERT INTO kids (id, family_id, name, username, password, avatar_color, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, k.ID, k.FamilyID, k.Name, k.Username, k.Password, k.AvatarColor, k.CreatedAt, k.UpdatedAt)
		if err != nil {
			return fmt.Errorf("kid %d: %w", k.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importStates(states []StateBackup) error {
	for _, st := range states {
		_, err := s.db.Exec(`
			INSERT INTO app_state (kid_id, version, payload, updated_at)
			VALUES (?, ?, ?, ?)
		`, st.KidID, st.Version, string(st.Payload), st.UpdatedAt)
		if err != nil {
			return fmt.Errorf("state for kid %d: %w", st.KidID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
