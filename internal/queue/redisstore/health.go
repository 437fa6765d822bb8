package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"qaueue/internal/queue"
)

// Health pings the server, tests write access with a short-lived key, and
// checks that every queued id has a record hash.
func (s *Store) Health(ctx context.Context) (queue.Health, error) {
	health := queue.Health{Backend: BackendName, Location: s.location}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.client.Ping(connCtx).Err(); err != nil {
		health.Error = err.Error()
		return health, queue.Unavailable("ping", err)
	}
	health.Reachable = true
	health.Writable = s.client.Set(connCtx, s.namespace+":health", time.Now().UTC().Format(time.RFC3339), 10*time.Second).Err() == nil

	order, err := s.Snapshot(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.QueueLength = len(order)

	keys, err := s.itemKeys(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.Items = len(keys)

	missing, err := s.countMissing(connCtx, order)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.IntegrityOK = missing == 0
	if missing > 0 {
		health.Error = fmt.Sprintf("%d queued ids have no record", missing)
	}
	return health, nil
}

func (s *Store) countMissing(ctx context.Context, order []string) (int, error) {
	if len(order) == 0 {
		return 0, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(order))
	for i, id := range order {
		cmds[i] = pipe.Exists(ctx, s.itemKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, queue.Unavailable("integrity check", err)
	}
	missing := 0
	for _, cmd := range cmds {
		if cmd.Val() == 0 {
			missing++
		}
	}
	return missing, nil
}
