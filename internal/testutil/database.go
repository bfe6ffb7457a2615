package testutil

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/allenwoods/naive-coreterra/internal/database"
	"github.com/allenwoods/naive-coreterra/internal/store"
)

func NewTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// Documents maps a document file name, such as "users.json", to the value
// written into it before the store is opened.
type Documents map[string]any

// NewTestStore writes seed into a temporary data directory and returns a
// store reading from it.
func NewTestStore(t *testing.T, seed Documents) *store.Store {
	t.Helper()

	dir := t.TempDir()
	for name, content := range seed {
		WriteDocument(t, dir, name, content)
	}
	return store.New(dir)
}

func WriteDocument(t *testing.T, dir, name string, content any) {
	t.Helper()

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		t.Fatalf("encoding %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
