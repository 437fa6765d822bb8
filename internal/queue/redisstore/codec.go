package redisstore

import (
	"time"

	"qaueue/internal/queue"
)

const (
	fieldURL        = "url"
	fieldType       = "type"
	fieldName       = "name"
	fieldStatus     = "status"
	fieldReleasedAt = "released_at"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"

	// fieldLegacyValue held the content key in records written before "url".
	fieldLegacyValue = "value"
)

// encodeItem flattens item into HSET field/value pairs, omitting empty values.
func encodeItem(item *queue.Item) []any {
	args := []any{
		fieldURL, item.URL,
		fieldType, string(item.Type),
		fieldStatus, string(item.Status),
		fieldCreatedAt, formatTime(item.CreatedAt),
		fieldUpdatedAt, formatTime(item.UpdatedAt),
	}
	if item.Name != "" {
		args = append(args, fieldName, item.Name)
	}
	if item.ReleasedAt != nil {
		args = append(args, fieldReleasedAt, formatTime(*item.ReleasedAt))
	}
	return args
}

func decodeItem(id string, fields map[string]string) *queue.Item {
	item := &queue.Item{
		ID:     id,
		URL:    fields[fieldURL],
		Type:   queue.ItemType(fields[fieldType]),
		Name:   fields[fieldName],
		Status: queue.Status(fields[fieldStatus]),
	}
	if item.URL == "" {
		item.URL = fields[fieldLegacyValue]
	}
	if t, ok := parseTime(fields[fieldCreatedAt]); ok {
		item.CreatedAt = t
	}
	if t, ok := parseTime(fields[fieldUpdatedAt]); ok {
		item.UpdatedAt = t
	}
	if t, ok := parseTime(fields[fieldReleasedAt]); ok {
		item.ReleasedAt = &t
	}
	return item
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// pairsToMap converts a flat HGETALL script reply into a field map.
func pairsToMap(raw any) map[string]string {
	flat, _ := raw.([]any)
	fields := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		key, _ := flat[i].(string)
		value, _ := flat[i+1].(string)
		fields[key] = value
	}
	return fields
}
