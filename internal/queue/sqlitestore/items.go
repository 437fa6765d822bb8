package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"qaueue/internal/queue"
)

// ItemExists reports whether a record with id is stored.
func (s *Store) ItemExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM items WHERE id = ?`, id).Scan(&count); err != nil {
		return false, queue.Unavailable("item exists", err)
	}
	return count > 0, nil
}

// LoadItem fetches a record by id, returning nil when absent.
func (s *Store) LoadItem(ctx context.Context, id string) (*queue.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queue.Unavailable("load item", err)
	}
	return item, nil
}

// InsertItem stores a new record and appends it to the queue tail.
func (s *Store) InsertItem(ctx context.Context, item *queue.Item) (int, error) {
	if item == nil {
		return 0, errors.New("item is nil")
	}
	position := 0
	err := s.withTx(ctx, "insert item", func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM items WHERE id = ?`, item.ID).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return queue.ErrDuplicateItem
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, url, type, name, status, released_at, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.URL,
			string(item.Type),
			nullableString(item.Name),
			string(item.Status),
			nullableTime(item.ReleasedAt),
			formatTime(item.CreatedAt),
			formatTime(item.UpdatedAt),
		); err != nil {
			return err
		}
		var err error
		position, err = appendEntry(ctx, tx, item.ID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return position, nil
}

// MergeItem overwrites name, status, and released_at when set on item. URL
// and type are derived from the id and never change.
func (s *Store) MergeItem(ctx context.Context, item *queue.Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	updatedAt := item.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	return s.withTx(ctx, "merge item", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE items
             SET name = COALESCE(?, name),
                 status = COALESCE(?, status),
                 released_at = COALESCE(?, released_at),
                 updated_at = ?
             WHERE id = ?`,
			nullableString(item.Name),
			nullableString(string(item.Status)),
			nullableTime(item.ReleasedAt),
			formatTime(updatedAt),
			item.ID,
		)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

// DeleteItem removes id from the queue and deletes its record.
func (s *Store) DeleteItem(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.withTx(ctx, "delete item", func(tx *sql.Tx) error {
		if err := removeEntry(ctx, tx, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = affected > 0
		return nil
	})
	return removed, err
}

// SetStatus updates the status and, when dequeue is set, removes the item
// from the queue within the same transaction. Repeating the current status
// keeps an existing released_at.
func (s *Store) SetStatus(ctx context.Context, id string, status queue.Status, releasedAt *time.Time, dequeue bool) error {
	return s.withTx(ctx, "set status", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE items
             SET status = ?1,
                 released_at = CASE WHEN status = ?1 AND released_at IS NOT NULL THEN released_at ELSE COALESCE(?2, released_at) END,
                 updated_at = ?3
             WHERE id = ?4`,
			string(status),
			nullableTime(releasedAt),
			formatTime(time.Now()),
			id,
		)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return err
		}
		if dequeue {
			return removeEntry(ctx, tx, id)
		}
		return nil
	})
}

// CountByStatus returns record counts grouped by status.
func (s *Store) CountByStatus(ctx context.Context) (map[queue.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM items GROUP BY status`)
	if err != nil {
		return nil, queue.Unavailable("count by status", err)
	}
	defer rows.Close()

	counts := make(map[queue.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, queue.Unavailable("count by status", err)
		}
		counts[queue.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, queue.Unavailable("count by status", err)
	}
	return counts, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return queue.ErrItemNotFound
	}
	return nil
}
