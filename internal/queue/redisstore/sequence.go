package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"qaueue/internal/queue"
)

// Snapshot returns the queued ids ordered head first.
func (s *Store) Snapshot(ctx context.Context) ([]string, error) {
	order, err := s.client.LRange(ctx, s.queueKey(), 0, -1).Result()
	if err != nil {
		return nil, queue.Unavailable("snapshot", err)
	}
	if order == nil {
		order = []string{}
	}
	return order, nil
}

// PendingItems reads the queue and every referenced record in one script.
func (s *Store) PendingItems(ctx context.Context) ([]queue.QueuedEntry, error) {
	reply, err := pendingScript.Run(ctx, s.client, []string{s.queueKey()}, s.itemKey("")).Slice()
	if err != nil {
		return nil, queue.Unavailable("pending items", err)
	}
	entries := make([]queue.QueuedEntry, 0, len(reply))
	for position, raw := range reply {
		pair, ok := raw.([]any)
		if !ok || len(pair) != 2 {
			return nil, queue.Unavailable("pending items", errors.New("unexpected script reply"))
		}
		id, _ := pair[0].(string)
		entry := queue.QueuedEntry{ID: id, Position: position}
		if fields := pairsToMap(pair[1]); len(fields) > 0 {
			entry.Item = decodeItem(id, fields)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// IndexOf returns the 0-based queue position of id.
func (s *Store) IndexOf(ctx context.Context, id string) (int, bool, error) {
	position, err := s.client.LPos(ctx, s.queueKey(), id, redis.LPosArgs{}).Result()
	if errors.Is(err, redis.Nil) {
		return -1, false, nil
	}
	if err != nil {
		return -1, false, queue.Unavailable("index of", err)
	}
	return int(position), true, nil
}

// At returns the id at index; Redis resolves negative indices from the tail.
func (s *Store) At(ctx context.Context, index int) (string, bool, error) {
	id, err := s.client.LIndex(ctx, s.queueKey(), int64(index)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, queue.Unavailable("at", err)
	}
	return id, true, nil
}

// AppendIfAbsent enqueues id at the tail unless present and returns its position.
func (s *Store) AppendIfAbsent(ctx context.Context, id string) (int, error) {
	position, err := appendScript.Run(ctx, s.client, []string{s.queueKey(), s.itemKey(id)}, id).Int()
	if err != nil {
		return 0, queue.Unavailable("append", err)
	}
	if position == appendMissing {
		return 0, queue.ErrItemNotFound
	}
	return position, nil
}

// Dequeue removes every occurrence of id.
func (s *Store) Dequeue(ctx context.Context, id string) error {
	if err := s.client.LRem(ctx, s.queueKey(), 0, id).Err(); err != nil {
		return queue.Unavailable("dequeue", err)
	}
	return nil
}

// Move relocates a queued item inside a single script.
func (s *Store) Move(ctx context.Context, req queue.MoveRequest) error {
	force := "0"
	if req.Force {
		force = "1"
	}
	result, err := moveScript.Run(ctx, s.client,
		[]string{s.queueKey(), s.itemKey(req.ID)},
		req.ID, req.Target, force, string(queue.StatusQueued),
	).Int64Slice()
	if err != nil {
		return queue.Unavailable("move", err)
	}
	if len(result) != 2 {
		return queue.Unavailable("move", errors.New("unexpected script reply"))
	}
	switch result[0] {
	case moveOK:
		return nil
	case moveNotFound:
		return queue.ErrItemNotFound
	case moveNotQueued:
		return queue.ErrItemNotQueued
	case moveOutOfRange:
		return &queue.OutOfRangePriorityError{Index: req.Target, Length: int(result[1])}
	default:
		return queue.Unavailable("move", errors.New("unknown script result"))
	}
}
