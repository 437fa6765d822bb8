package sqlitestore

import (
	"context"
	"database/sql"
	"errors"

	"qaueue/internal/queue"
)

// Snapshot returns the queued ids ordered head first.
func (s *Store) Snapshot(ctx context.Context) ([]string, error) {
	order, err := loadOrder(ctx, s.db)
	if err != nil {
		return nil, queue.Unavailable("snapshot", err)
	}
	return order, nil
}

// IndexOf returns the 0-based queue position of id.
func (s *Store) IndexOf(ctx context.Context, id string) (int, bool, error) {
	var position int
	err := s.db.QueryRowContext(ctx, `SELECT position FROM queue_entries WHERE item_id = ?`, id).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, false, nil
	}
	if err != nil {
		return -1, false, queue.Unavailable("index of", err)
	}
	return position, true, nil
}

// At returns the id stored at index. Negative indices count from the tail and
// are resolved in the same statement as the lookup.
func (s *Store) At(ctx context.Context, index int) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT item_id FROM queue_entries
         WHERE position = CASE WHEN ?1 < 0 THEN ?1 + (SELECT COUNT(1) FROM queue_entries) ELSE ?1 END`,
		index,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, queue.Unavailable("at", err)
	}
	return id, true, nil
}

// PendingItems joins every queue entry with its record in one statement.
func (s *Store) PendingItems(ctx context.Context) ([]queue.QueuedEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.item_id, q.position, i.url, i.type, i.name, i.status, i.released_at, i.created_at, i.updated_at
         FROM queue_entries q LEFT JOIN items i ON i.id = q.item_id
         ORDER BY q.position`)
	if err != nil {
		return nil, queue.Unavailable("pending items", err)
	}
	defer rows.Close()

	entries := []queue.QueuedEntry{}
	for rows.Next() {
		var (
			entry                  queue.QueuedEntry
			url, itemType, name    sql.NullString
			status, releasedRaw    sql.NullString
			createdRaw, updatedRaw sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Position, &url, &itemType, &name, &status, &releasedRaw, &createdRaw, &updatedRaw); err != nil {
			return nil, queue.Unavailable("pending items", err)
		}
		if url.Valid {
			entry.Item = newItem(entry.ID, url.String, itemType.String, name.String, status.String, releasedRaw, createdRaw.String, updatedRaw.String)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, queue.Unavailable("pending items", err)
	}
	return entries, nil
}

// AppendIfAbsent enqueues id at the tail unless present and returns its position.
func (s *Store) AppendIfAbsent(ctx context.Context, id string) (int, error) {
	position := 0
	err := s.withTx(ctx, "append", func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT position FROM queue_entries WHERE item_id = ?`, id).Scan(&position)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM items WHERE id = ?`, id).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return queue.ErrItemNotFound
		}
		position, err = appendEntry(ctx, tx, id)
		return err
	})
	return position, err
}

// Dequeue removes id from the queue. Absent ids are a no-op.
func (s *Store) Dequeue(ctx context.Context, id string) error {
	return s.withTx(ctx, "dequeue", func(tx *sql.Tx) error {
		return removeEntry(ctx, tx, id)
	})
}

// Move relocates a queued item. All checks and the rewrite happen inside one
// transaction so concurrent moves cannot observe a half-written order.
func (s *Store) Move(ctx context.Context, req queue.MoveRequest) error {
	return s.withTx(ctx, "move", func(tx *sql.Tx) error {
		item, err := scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, req.ID))
		if errors.Is(err, sql.ErrNoRows) {
			return queue.ErrItemNotFound
		}
		if err != nil {
			return err
		}
		if !req.Force && !item.IsPending() {
			return queue.ErrItemNotQueued
		}

		order, err := loadOrder(ctx, tx)
		if err != nil {
			return err
		}
		if _, ok := queue.IndexIn(order, req.ID); !ok {
			return queue.ErrItemNotQueued
		}
		target, err := queue.NormalizeIndex(req.Target, len(order))
		if err != nil {
			return err
		}
		next, changed := queue.PlanMove(order, req.ID, target)
		if !changed {
			return nil
		}
		return writeOrder(ctx, tx, next)
	})
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadOrder(ctx context.Context, q querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT item_id FROM queue_entries ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	order := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		order = append(order, id)
	}
	return order, rows.Err()
}

func writeOrder(ctx context.Context, tx *sql.Tx, order []string) error {
	stmt, err := tx.PrepareContext(ctx, `UPDATE queue_entries SET position = ? WHERE item_id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for position, id := range order {
		if _, err := stmt.ExecContext(ctx, position, id); err != nil {
			return err
		}
	}
	return nil
}

func appendEntry(ctx context.Context, tx *sql.Tx, id string) (int, error) {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM queue_entries`).Scan(&count); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO queue_entries (item_id, position) VALUES (?, ?)`, id, count); err != nil {
		return 0, err
	}
	return count, nil
}

func removeEntry(ctx context.Context, tx *sql.Tx, id string) error {
	var position int
	err := tx.QueryRowContext(ctx, `SELECT position FROM queue_entries WHERE item_id = ?`, id).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM queue_entries WHERE item_id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE queue_entries SET position = position - 1 WHERE position > ?`, position)
	return err
}
