package db

import (
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer conn.Close()

	if err := Migrate(conn, nil); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	for _, table := range []string{"projects", "drawings", "requirements", "annotations"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after migration: %v", table, err)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer conn.Close()

	if err := Migrate(conn, nil); err != nil {
		t.Fatalf("first Migrate() failed: %v", err)
	}
	if err := Migrate(conn, nil); err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("schema_migrations has %d rows, want 2", count)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer conn.Close()

	if err := Migrate(conn, nil); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	_, err = conn.Exec(`INSERT INTO drawings (project_id, filename, original_name, uploaded_at)
		VALUES (999, 'x.pdf', 'x.pdf', datetime('now'))`)
	if err == nil {
		t.Error("insert with dangling project_id succeeded; foreign keys are off")
	}
}
