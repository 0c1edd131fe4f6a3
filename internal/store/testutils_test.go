package store_test

import (
	"context"
	"io"
	"testing"

	"github.com/crimetryx/crimetryx/internal/sqlite"
	"github.com/crimetryx/crimetryx/internal/store"
	"github.com/crimetryx/crimetryx/internal/testhelpers"
)

// newTestStore creates a store over a fresh in-memory database.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := sqlite.NewDatabase(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Fatal(closeErr)
		}
	})

	return store.New(db, testhelpers.NewLogger(io.Discard))
}
