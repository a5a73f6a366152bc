package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fekuna/omnipos-stockroom/pkg/database"
	"github.com/jmoiron/sqlx"
)

// NewTestDB opens a migrated SQLite database in a temp dir. It is closed
// when the test ends.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "stockroom.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
