package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"qaueue/internal/config"
	"qaueue/internal/queue"
)

const (
	// BackendName identifies this backend in health output.
	BackendName      = "redis"
	defaultNamespace = "qaueue"
)

// Option is a functional option for configuring the Redis store.
type Option func(*Store)

// WithNamespace sets the key prefix. The queue list is "<ns>_Q" and each
// record is the hash "<ns>:item:<id>".
func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns = strings.TrimSpace(ns); ns != "" {
			s.namespace = ns
		}
	}
}

// WithDB selects the logical Redis database, overriding any in the URL.
func WithDB(db int) Option {
	return func(s *Store) {
		if db >= 0 {
			s.db = &db
		}
	}
}

// Store is a queue.Backend on a Redis list plus one hash per record. Each
// mutating method is a single Lua script, so it is atomic with respect to
// every other client of the same server.
type Store struct {
	client    *redis.Client
	namespace string
	db        *int
	location  string
	closed    atomic.Bool
}

var _ queue.Backend = (*Store)(nil)

// Open connects using the [store] config section.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	return New(ctx, cfg.Store.RedisURL, WithNamespace(cfg.Store.RedisNamespace), WithDB(cfg.Store.RedisDB))
}

// New connects to redisURL (e.g. "redis://localhost:6379") and pings it.
func New(ctx context.Context, redisURL string, opts ...Option) (*Store, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	s := &Store{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(s)
	}
	if s.db != nil {
		redisOpts.DB = *s.db
	}
	s.client = redis.NewClient(redisOpts)
	s.location = fmt.Sprintf("%s/%d", redisOpts.Addr, redisOpts.DB)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Ping(pingCtx).Err(); err != nil {
		_ = s.client.Close()
		return nil, queue.Unavailable("redis ping", err)
	}
	return s, nil
}

// Close releases the client connection pool.
func (s *Store) Close() error {
	if s == nil || s.client == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.client.Close()
}

func (s *Store) queueKey() string {
	return s.namespace + "_Q"
}

func (s *Store) itemKey(id string) string {
	return s.namespace + ":item:" + id
}

func (s *Store) itemPattern() string {
	return s.namespace + ":item:*"
}

// ItemExists reports whether a record with id is stored.
func (s *Store) ItemExists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.itemKey(id)).Result()
	if err != nil {
		return false, queue.Unavailable("item exists", err)
	}
	return n > 0, nil
}

// LoadItem fetches a record by id, returning nil when absent.
func (s *Store) LoadItem(ctx context.Context, id string) (*queue.Item, error) {
	fields, err := s.client.HGetAll(ctx, s.itemKey(id)).Result()
	if err != nil {
		return nil, queue.Unavailable("load item", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return decodeItem(id, fields), nil
}

// InsertItem stores a new record and appends it to the queue tail.
func (s *Store) InsertItem(ctx context.Context, item *queue.Item) (int, error) {
	if item == nil {
		return 0, errors.New("item is nil")
	}
	args := append([]any{item.ID}, encodeItem(item)...)
	position, err := insertScript.Run(ctx, s.client, []string{s.queueKey(), s.itemKey(item.ID)}, args...).Int()
	if err != nil {
		return 0, queue.Unavailable("insert item", err)
	}
	if position == insertDuplicate {
		return 0, queue.ErrDuplicateItem
	}
	return position, nil
}

// MergeItem overwrites name, status, and released_at when set on item.
func (s *Store) MergeItem(ctx context.Context, item *queue.Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	updatedAt := item.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	args := []any{fieldUpdatedAt, formatTime(updatedAt)}
	if item.Name != "" {
		args = append(args, fieldName, item.Name)
	}
	if item.Status != "" {
		args = append(args, fieldStatus, string(item.Status))
	}
	if item.ReleasedAt != nil {
		args = append(args, fieldReleasedAt, formatTime(*item.ReleasedAt))
	}
	found, err := mergeScript.Run(ctx, s.client, []string{s.itemKey(item.ID)}, args...).Int()
	if err != nil {
		return queue.Unavailable("merge item", err)
	}
	if found == 0 {
		return queue.ErrItemNotFound
	}
	return nil
}

// DeleteItem removes id from the queue and deletes its record.
func (s *Store) DeleteItem(ctx context.Context, id string) (bool, error) {
	deleted, err := deleteScript.Run(ctx, s.client, []string{s.queueKey(), s.itemKey(id)}, id).Int()
	if err != nil {
		return false, queue.Unavailable("delete item", err)
	}
	return deleted > 0, nil
}

// SetStatus updates the status and optionally dequeues in one script.
func (s *Store) SetStatus(ctx context.Context, id string, status queue.Status, releasedAt *time.Time, dequeue bool) error {
	released := ""
	if releasedAt != nil {
		released = formatTime(*releasedAt)
	}
	flag := "0"
	if dequeue {
		flag = "1"
	}
	found, err := setStatusScript.Run(ctx, s.client,
		[]string{s.queueKey(), s.itemKey(id)},
		id, string(status), released, formatTime(time.Now()), flag,
	).Int()
	if err != nil {
		return queue.Unavailable("set status", err)
	}
	if found == 0 {
		return queue.ErrItemNotFound
	}
	return nil
}

// CountByStatus scans every record hash and groups by status.
func (s *Store) CountByStatus(ctx context.Context) (map[queue.Status]int, error) {
	keys, err := s.itemKeys(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[queue.Status]int)
	if len(keys) == 0 {
		return counts, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGet(ctx, key, fieldStatus)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, queue.Unavailable("count by status", err)
	}
	for _, cmd := range cmds {
		status, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, queue.Unavailable("count by status", err)
		}
		counts[queue.Status(status)]++
	}
	return counts, nil
}

func (s *Store) itemKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.itemPattern(), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, queue.Unavailable("scan items", err)
	}
	return keys, nil
}
