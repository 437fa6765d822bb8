package testsupport

import (
	"testing"

	"qaueue/internal/config"
	"qaueue/internal/engine"
	"qaueue/internal/logging"
)

// MustEngine opens a SQLite-backed engine for cfg and registers cleanup.
func MustEngine(t testing.TB, cfg *config.Config) *engine.Engine {
	t.Helper()
	return engine.New(MustOpenStore(t, cfg), cfg, logging.NewNop())
}
