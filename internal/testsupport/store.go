package testsupport

import (
	"context"
	"testing"

	"qaueue/internal/config"
	"qaueue/internal/queue/sqlitestore"
)

// MustOpenStore opens the SQLite backend for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sqlitestore.Store {
	t.Helper()

	store, err := sqlitestore.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("sqlitestore.Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
