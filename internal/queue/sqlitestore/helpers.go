package sqlitestore

import (
	"database/sql"
	"errors"
	"time"

	"qaueue/internal/queue"
)

const itemColumns = "id, url, type, name, status, released_at, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*queue.Item, error) {
	var (
		id          string
		url         string
		itemType    string
		name        sql.NullString
		status      string
		releasedRaw sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&id, &url, &itemType, &name, &status, &releasedRaw, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	return newItem(id, url, itemType, name.String, status, releasedRaw, createdRaw, updatedRaw), nil
}

func newItem(id, url, itemType, name, status string, releasedRaw sql.NullString, createdRaw, updatedRaw string) *queue.Item {
	item := &queue.Item{
		ID:     id,
		URL:    url,
		Type:   queue.ItemType(itemType),
		Name:   name,
		Status: queue.Status(status),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	if releasedRaw.Valid {
		if released, err := parseTimeString(releasedRaw.String); err == nil {
			item.ReleasedAt = &released
		}
	}
	return item
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
