package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"qaueue/internal/config"
	"qaueue/internal/queue"
)

// BackendName identifies this backend in health output.
const BackendName = "sqlite"

// Store is a queue.Backend persisted in a single SQLite file. Every mutating
// method runs in its own BEGIN IMMEDIATE transaction, so writers from other
// processes sharing the file are serialized by SQLite itself.
type Store struct {
	db   *sql.DB
	path string
}

var _ queue.Backend = (*Store)(nil)

// Open creates the database directory, connects, and initializes the schema.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(ctx, cfg.Store.SQLitePath)
}

// OpenPath connects to the database file at path.
func OpenPath(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, queue.Unavailable("open sqlite db", err)
	}
	store := &Store{db: db, path: path}

	// Two processes opening a fresh file must not both create the schema.
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil || !locked {
		_ = db.Close()
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return nil, queue.Unavailable("lock schema", err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		if errors.Is(err, ErrSchemaMismatch) {
			return nil, err
		}
		return nil, queue.Unavailable("init schema", err)
	}
	return store, nil
}

func dsn(path string) string {
	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "foreign_keys(1)")
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withTx runs fn in a write transaction. Domain errors returned by fn pass
// through untouched; everything else is reported as ErrStoreUnavailable.
func (s *Store) withTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return queue.Unavailable(operation, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return classify(operation, err)
	}
	if err := tx.Commit(); err != nil {
		return queue.Unavailable(operation, err)
	}
	return nil
}

func classify(operation string, err error) error {
	switch queue.ErrorKind(err) {
	case "internal":
		return queue.Unavailable(operation, err)
	default:
		return err
	}
}
