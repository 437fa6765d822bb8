package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"qaueue/internal/identity"
	"qaueue/internal/logging"
	"qaueue/internal/queue"
)

// AddItem creates a queued item for contentKey and returns it with its queue
// position. An existing item yields ErrDuplicateItem and leaves the store
// untouched.
func (e *Engine) AddItem(ctx context.Context, contentKey, name string) (item *queue.Item, position int, err error) {
	id, _ := identity.Resolve(strings.TrimSpace(contentKey))
	c := e.begin(ctx, "add_item", id)
	defer func() { c.end(err) }()

	item, position, err = e.records.Create(c.ctx, contentKey, name)
	switch {
	case errors.Is(err, queue.ErrDuplicateItem):
		c.logger.Info("item already exists", logging.String("url", contentKey))
		return nil, 0, err
	case err != nil:
		return nil, 0, err
	}
	c.logger.Info("item added",
		logging.String("url", item.URL),
		logging.String("type", string(item.Type)),
		logging.Int("position", position),
	)
	return item, position, nil
}

// Get resolves a user reference (see ParseRef) and returns the item, or
// ErrItemNotFound when nothing matches.
func (e *Engine) Get(ctx context.Context, ref string) (*queue.Item, error) {
	parsed, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	var item *queue.Item
	switch parsed.Kind {
	case RefIndex:
		item, err = e.GetByIndex(ctx, parsed.Index)
	case RefURL:
		item, err = e.GetByURL(ctx, parsed.Value)
	default:
		item, err = e.GetByID(ctx, parsed.Value)
	}
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s %s", queue.ErrItemNotFound, parsed.Kind, parsed.Value)
	}
	return item, nil
}

// GetByID returns the item with id, or nil when absent.
func (e *Engine) GetByID(ctx context.Context, id string) (item *queue.Item, err error) {
	c := e.begin(ctx, "get_by_id", id)
	defer func() { c.end(err) }()
	return e.records.Get(c.ctx, id)
}

// GetByURL returns the item for url, or nil when absent.
func (e *Engine) GetByURL(ctx context.Context, url string) (item *queue.Item, err error) {
	id, _ := identity.Resolve(url)
	c := e.begin(ctx, "get_by_url", id)
	defer func() { c.end(err) }()
	return e.records.GetByURL(c.ctx, url)
}

// GetByIndex returns the item at a queue position, or nil when out of range.
func (e *Engine) GetByIndex(ctx context.Context, index int) (item *queue.Item, err error) {
	c := e.begin(ctx, "get_by_index", "")
	defer func() { c.end(err) }()
	return e.records.GetByIndex(c.ctx, index)
}

// ListPending returns the queued items in priority order, read in one
// consistent view. Queue entries whose record has vanished are skipped.
func (e *Engine) ListPending(ctx context.Context) (items []*queue.Item, err error) {
	c := e.begin(ctx, "list_pending", "")
	defer func() { c.end(err) }()

	entries, err := e.records.Pending(c.ctx)
	if err != nil {
		return nil, err
	}
	items = make([]*queue.Item, 0, len(entries))
	for _, entry := range entries {
		if entry.Item == nil {
			logging.WarnWithContext(c.logger, "queued item has no record", "dangling_queue_entry",
				logging.String(logging.FieldItemID, entry.ID),
				logging.Int("position", entry.Position),
			)
			continue
		}
		items = append(items, entry.Item)
	}
	return items, nil
}

// Update merges the non-empty fields of item into the stored record and
// returns the reloaded record. Queue order is not touched.
func (e *Engine) Update(ctx context.Context, item *queue.Item) (updated *queue.Item, err error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	c := e.begin(ctx, "update", item.ID)
	defer func() { c.end(err) }()

	updated, err = e.records.Update(c.ctx, item)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("item updated")
	return updated, nil
}

// Reprioritize moves id to newIndex. Unless force is set the item must hold
// the queued status.
func (e *Engine) Reprioritize(ctx context.Context, id string, newIndex int, force bool) (err error) {
	c := e.begin(ctx, "reprioritize", id)
	defer func() { c.end(err) }()

	if err := e.sequence.MoveToIndex(c.ctx, id, newIndex, force); err != nil {
		return err
	}
	c.logger.Info("item reprioritized",
		logging.Int("target", newIndex),
		logging.Bool("force", force),
	)
	return nil
}

// SetStatus changes the status of id. Setting the released status stamps
// released_at and removes the item from the queue in the same transaction.
func (e *Engine) SetStatus(ctx context.Context, id string, status string) (item *queue.Item, err error) {
	c := e.begin(ctx, "set_status", id)
	defer func() { c.end(err) }()

	normalized, ok := queue.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: status must not be empty", queue.ErrInvalidStatus)
	}
	item, err = e.records.SetStatus(c.ctx, id, normalized)
	if err != nil {
		return nil, err
	}
	c.logger.Info("item status changed",
		logging.String("status", string(item.Status)),
		logging.Bool("dequeued", queue.IsCompletedStatus(item.Status)),
	)
	return item, nil
}

// RemoveItem dequeues and deletes id. Unknown ids fail with ErrItemNotFound.
func (e *Engine) RemoveItem(ctx context.Context, id string) (err error) {
	c := e.begin(ctx, "remove_item", id)
	defer func() { c.end(err) }()

	item, err := e.records.Get(c.ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return queue.ErrItemNotFound
	}
	if err := e.records.Remove(c.ctx, item); err != nil {
		return err
	}
	c.logger.Info("item removed", logging.String("url", item.URL))
	return nil
}

// Position returns the queue position of id, or false when it is not queued.
func (e *Engine) Position(ctx context.Context, id string) (position int, ok bool, err error) {
	c := e.begin(ctx, "position", id)
	defer func() { c.end(err) }()
	return e.sequence.IndexOf(c.ctx, id)
}

// Stats counts records per status alongside the queue length.
func (e *Engine) Stats(ctx context.Context) (stats queue.Stats, err error) {
	c := e.begin(ctx, "stats", "")
	defer func() { c.end(err) }()
	return e.records.Stats(c.ctx)
}

// Health reports backend diagnostics.
func (e *Engine) Health(ctx context.Context) (health queue.Health, err error) {
	c := e.begin(ctx, "health", "")
	defer func() { c.end(err) }()
	return e.backend.Health(c.ctx)
}
