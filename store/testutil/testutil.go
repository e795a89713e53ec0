// Package testutil provides database helpers for store tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/calibrant/gdtbench/db"
)

// SetupTestDB opens a migrated throwaway database for one test. The file
// lives in the test's temp dir and is cleaned up with it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gdtbench_test.db")
	conn, err := db.Open(path, nil)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn, nil); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return conn
}
