package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"qaueue/internal/identity"
)

// Records manages item records keyed by item id.
type Records struct {
	backend Backend
	now     func() time.Time
}

// NewRecords wraps a backend.
func NewRecords(backend Backend) *Records {
	return &Records{backend: backend, now: func() time.Time { return time.Now().UTC() }}
}

// Exists reports whether a record with id is stored.
func (r *Records) Exists(ctx context.Context, id string) (bool, error) {
	return r.backend.ItemExists(ctx, id)
}

// Get fetches a record by id. Absent records return nil without error.
func (r *Records) Get(ctx context.Context, id string) (*Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	return r.backend.LoadItem(ctx, id)
}

// GetByURL resolves url to an id and fetches the record.
func (r *Records) GetByURL(ctx context.Context, url string) (*Item, error) {
	id, err := identity.Resolve(url)
	if err != nil {
		return nil, err
	}
	return r.backend.LoadItem(ctx, id)
}

// GetByIndex fetches the record at a queue position. Negative indices count
// from the tail; positions outside the queue return nil.
func (r *Records) GetByIndex(ctx context.Context, index int) (*Item, error) {
	id, ok, err := r.backend.At(ctx, index)
	if err != nil || !ok {
		return nil, err
	}
	return r.backend.LoadItem(ctx, id)
}

// Pending returns the queue entries with their records in priority order.
func (r *Records) Pending(ctx context.Context) ([]QueuedEntry, error) {
	entries, err := r.backend.PendingItems(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []QueuedEntry{}
	}
	return entries, nil
}

// Create stores a new queued item for contentKey and appends it to the queue.
// It returns the stored record and its queue position.
func (r *Records) Create(ctx context.Context, contentKey, name string) (*Item, int, error) {
	contentKey = strings.TrimSpace(contentKey)
	key, err := identity.Parse(contentKey)
	if err != nil {
		return nil, 0, err
	}
	id := identity.Digest(contentKey)
	if strings.TrimSpace(name) == "" {
		name = identity.DefaultName(key)
	}

	now := r.now()
	item := &Item{
		ID:        id,
		URL:       contentKey,
		Type:      key.Type,
		Name:      strings.TrimSpace(name),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	position, err := r.backend.InsertItem(ctx, item)
	if err != nil {
		return nil, 0, err
	}
	stored, err := r.backend.LoadItem(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if stored == nil {
		return nil, 0, ErrItemNotFound
	}
	return stored, position, nil
}

// Update persists every non-empty field of item and returns the reloaded
// record, so concurrent changes to untouched fields are visible to the caller.
func (r *Records) Update(ctx context.Context, item *Item) (*Item, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	if strings.TrimSpace(item.ID) == "" {
		return nil, ErrItemNotFound
	}
	patch := item.Clone()
	patch.UpdatedAt = r.now()
	if err := r.backend.MergeItem(ctx, patch); err != nil {
		return nil, err
	}
	stored, err := r.backend.LoadItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrItemNotFound
	}
	return stored, nil
}

// SetStatus changes the status of id. Completed statuses stamp released_at
// and remove the item from the queue in the same transaction.
func (r *Records) SetStatus(ctx context.Context, id string, status Status) (*Item, error) {
	var releasedAt *time.Time
	completed := IsCompletedStatus(status)
	if completed {
		now := r.now()
		releasedAt = &now
	}
	if err := r.backend.SetStatus(ctx, id, status, releasedAt, completed); err != nil {
		return nil, err
	}
	stored, err := r.backend.LoadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrItemNotFound
	}
	return stored, nil
}

// Remove dequeues item and deletes its record.
func (r *Records) Remove(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	removed, err := r.backend.DeleteItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrItemNotFound
	}
	return nil
}

// Stats aggregates record counts and the queue length.
func (r *Records) Stats(ctx context.Context) (Stats, error) {
	counts, err := r.backend.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}
	order, err := r.backend.Snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{ByStatus: counts, Queued: len(order)}
	for _, count := range counts {
		stats.Total += count
	}
	return stats, nil
}
