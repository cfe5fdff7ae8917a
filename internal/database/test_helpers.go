package database

import (
	"path/filepath"
	"testing"
)

// setupTestDB opens a throwaway sqlite database. The schema is created
// by NewDB, same as the server's sqlite path.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "gamelens_test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
