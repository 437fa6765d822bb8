package queue

import (
	"context"
	"strings"
)

// Sequence is the ordered list of pending item ids. Position 0 is the highest
// priority.
type Sequence struct {
	backend Backend
}

// NewSequence wraps a backend.
func NewSequence(backend Backend) *Sequence {
	return &Sequence{backend: backend}
}

// Snapshot returns the full current ordering.
func (s *Sequence) Snapshot(ctx context.Context) ([]string, error) {
	order, err := s.backend.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if order == nil {
		order = []string{}
	}
	return order, nil
}

// IndexOf returns the position of id, or false when it is not queued.
func (s *Sequence) IndexOf(ctx context.Context, id string) (int, bool, error) {
	return s.backend.IndexOf(ctx, id)
}

// AppendIfAbsent enqueues id at the tail unless already present and returns
// its position either way.
func (s *Sequence) AppendIfAbsent(ctx context.Context, id string) (int, error) {
	return s.backend.AppendIfAbsent(ctx, id)
}

// Remove deletes id from the queue; absent ids are a no-op.
func (s *Sequence) Remove(ctx context.Context, id string) error {
	return s.backend.Dequeue(ctx, id)
}

// MoveToIndex relocates id to target. See PlanMove for placement rules.
//
// It fails with ErrItemNotFound for unknown ids, ErrItemNotQueued when the
// item is not queued (status check skipped with force) or not in the queue,
// and *OutOfRangePriorityError when target falls outside -n..n-1.
func (s *Sequence) MoveToIndex(ctx context.Context, id string, target int, force bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrItemNotFound
	}
	return s.backend.Move(ctx, MoveRequest{ID: id, Target: target, Force: force})
}
