package engine

import (
	"context"
	"fmt"
	"log/slog"

	"qaueue/internal/config"
	"qaueue/internal/logging"
	"qaueue/internal/queue"
	"qaueue/internal/queue/redisstore"
	"qaueue/internal/queue/sqlitestore"
	"qaueue/internal/telemetry"
)

// OpenBackend connects to the backend selected by cfg.Store.Backend and wraps
// it with telemetry instrumentation when enabled.
func OpenBackend(ctx context.Context, cfg *config.Config) (queue.Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		store, err := sqlitestore.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return telemetry.WrapBackend(store, sqlitestore.BackendName), nil
	case config.BackendRedis:
		store, err := redisstore.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return telemetry.WrapBackend(store, redisstore.BackendName), nil
	default:
		return nil, fmt.Errorf("store.backend: unsupported value %q", cfg.Store.Backend)
	}
}

// Open connects the configured backend and builds an engine over it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logging.NewComponentLogger(logger, "store").Debug("backend opened",
		logging.String("backend", cfg.Store.Backend),
	)
	return New(backend, cfg, logger), nil
}
