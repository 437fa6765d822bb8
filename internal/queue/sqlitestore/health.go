package sqlitestore

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"qaueue/internal/queue"
)

// Health pings the database, checks write access to its directory, and runs
// SQLite's quick integrity check.
func (s *Store) Health(ctx context.Context) (queue.Health, error) {
	health := queue.Health{Backend: BackendName, Location: s.path}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, queue.Unavailable("ping", err)
	}
	health.Reachable = true
	health.Writable = unix.Access(filepath.Dir(s.path), unix.W_OK) == nil &&
		unix.Access(s.path, unix.R_OK|unix.W_OK) == nil

	var result string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA quick_check").Scan(&result); err != nil {
		health.Error = err.Error()
		return health, queue.Unavailable("integrity check", err)
	}
	health.IntegrityOK = strings.EqualFold(result, "ok")
	if !health.IntegrityOK {
		health.Error = result
	}

	if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM items").Scan(&health.Items); err != nil {
		health.Error = err.Error()
		return health, queue.Unavailable("count items", err)
	}
	if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM queue_entries").Scan(&health.QueueLength); err != nil {
		health.Error = err.Error()
		return health, queue.Unavailable("count queue", err)
	}
	return health, nil
}
