package testutil

import (
	"path/filepath"
	"testing"

	"github.com/nhle/mailcheck/internal/store"
)

// NewTestIndex creates a SQLiteIndex in a temp directory with all
// migrations applied. It automatically closes the index when the test
// completes.
func NewTestIndex(t *testing.T) *store.SQLiteIndex {
	t.Helper()

	idx, err := store.NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("creating test index: %v", err)
	}

	t.Cleanup(func() {
		if err := idx.Close(); err != nil {
			t.Errorf("closing test index: %v", err)
		}
	})

	return idx
}
