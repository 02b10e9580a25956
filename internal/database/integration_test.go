package database

import (
	"path/filepath"
	"testing"

	"phonicsquest/internal/config"
)

// TestDatabaseIntegration runs the full lifecycle against SQLite: connect,
// migrate, and verify the schema the repositories depend on.
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := &config.Config{
		DatabaseType: "sqlite",
		DatabasePath: filepath.Join(t.TempDir(), "test_integration.db"),
	}

	db, err := Initialize(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tables := []string{"users", "user_sessions", "families", "family_members", "kids", "kid_sessions", "app_state", "telemetry_events"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		if err := db.QueryRow(query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Migrations are recorded and never run twice.
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("Recorded migrations = %d, want 2", count)
	}
}

func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := &config.Config{
		DatabaseType: "sqlite",
		DatabasePath: filepath.Join(t.TempDir(), "test_ids.db"),
	}

	db, err := Initialize(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	id, err := db.ExecReturningID(
		"INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"parent@example.com", "hash", "Parent",
	)
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if id == 0 {
		t.Error("ExecReturningID returned zero id")
	}

	second, err := db.ExecReturningID(
		"INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"other@example.com", "hash", "Other",
	)
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if second <= id {
		t.Errorf("second id %d not greater than first %d", second, id)
	}
}
