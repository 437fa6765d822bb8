package queue

import (
	"context"
	"time"
)

// Backend is the persistent store behind Records and Sequence. Every method
// runs as a single transaction against the store: combined read/write
// operations (InsertItem, DeleteItem, SetStatus, AppendIfAbsent, Move) must
// never interleave with another caller's mutation. Store failures are
// returned wrapped with ErrStoreUnavailable.
type Backend interface {
	// ItemExists reports whether a record with id is present.
	ItemExists(ctx context.Context, id string) (bool, error)
	// LoadItem returns the record or nil when absent.
	LoadItem(ctx context.Context, id string) (*Item, error)
	// InsertItem stores a new record and appends it to the queue. It returns
	// ErrDuplicateItem, leaving the store untouched, when the id exists.
	InsertItem(ctx context.Context, item *Item) (int, error)
	// MergeItem writes every non-empty field of item over the stored record.
	MergeItem(ctx context.Context, item *Item) error
	// DeleteItem removes the item from the queue and deletes its record.
	DeleteItem(ctx context.Context, id string) (bool, error)
	// SetStatus updates status (and released_at when non-nil), removing the
	// item from the queue when dequeue is set.
	SetStatus(ctx context.Context, id string, status Status, releasedAt *time.Time, dequeue bool) error
	// CountByStatus returns record counts grouped by status.
	CountByStatus(ctx context.Context) (map[Status]int, error)

	// Snapshot returns the queued ids in priority order.
	Snapshot(ctx context.Context) ([]string, error)
	// PendingItems returns every queue entry joined with its record, read
	// in a single consistent view.
	PendingItems(ctx context.Context) ([]QueuedEntry, error)
	// IndexOf returns the 0-based position of id.
	IndexOf(ctx context.Context, id string) (int, bool, error)
	// At returns the id at index; negative indices count from the tail.
	At(ctx context.Context, index int) (string, bool, error)
	// AppendIfAbsent appends id unless present and returns its position.
	AppendIfAbsent(ctx context.Context, id string) (int, error)
	// Dequeue removes every occurrence of id.
	Dequeue(ctx context.Context, id string) error
	// Move relocates a queued item according to MoveRequest.
	Move(ctx context.Context, req MoveRequest) error

	Health(ctx context.Context) (Health, error)
	Close() error
}

// QueuedEntry is one queue slot. Item is nil when the slot references a
// record that no longer exists.
type QueuedEntry struct {
	ID       string
	Position int
	Item     *Item
}

// MoveRequest describes a reprioritization.
type MoveRequest struct {
	ID     string
	Target int
	// Force skips the queued-status precondition.
	Force bool
}
