package queue

import (
	"strings"
	"time"

	"qaueue/internal/identity"
)

// Status represents the lifecycle of an item. The set is open: callers may
// store workflow states such as "integration" or "staging".
type Status string

const (
	// StatusQueued is the initial status and the only one eligible for reprioritization.
	StatusQueued Status = "queued"
	// StatusReleased marks completed work. Setting it removes the item from the queue.
	StatusReleased Status = "released"
)

// ItemType mirrors identity.ItemType so callers need only this package.
type ItemType = identity.ItemType

// Item is a tracked unit of work.
type Item struct {
	ID         string
	URL        string
	Type       ItemType
	Name       string
	Status     Status
	ReleasedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPending reports whether the item holds the queued status.
func (i Item) IsPending() bool {
	return i.Status == StatusQueued
}

// Clone returns a deep copy.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	cp := *i
	if i.ReleasedAt != nil {
		released := *i.ReleasedAt
		cp.ReleasedAt = &released
	}
	return &cp
}

// ParseStatus trims user input into a Status. Custom statuses keep their
// case; the built-in ones match case-insensitively and come back canonical.
func ParseStatus(value string) (Status, bool) {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return "", false
	case strings.EqualFold(trimmed, string(StatusQueued)):
		return StatusQueued, true
	case strings.EqualFold(trimmed, string(StatusReleased)):
		return StatusReleased, true
	}
	return Status(trimmed), true
}

// IsCompletedStatus reports whether status triggers removal from the queue.
func IsCompletedStatus(status Status) bool {
	return strings.EqualFold(string(status), string(StatusReleased))
}

// Stats aggregates record counts for diagnostic output.
type Stats struct {
	Total    int
	Queued   int
	ByStatus map[Status]int
}

// Health captures diagnostic information about a backend.
type Health struct {
	Backend     string
	Location    string
	Reachable   bool
	Writable    bool
	IntegrityOK bool
	Items       int
	QueueLength int
	Error       string
}
