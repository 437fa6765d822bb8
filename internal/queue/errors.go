package queue

import (
	"errors"
	"fmt"

	"qaueue/internal/identity"
)

var (
	// ErrUnsupportedContent is returned when a content key matches no known item shape.
	ErrUnsupportedContent = identity.ErrUnsupportedContent
	ErrDuplicateItem      = errors.New("item already exists")
	ErrItemNotFound       = errors.New("item not found")
	ErrItemNotQueued      = errors.New("item is not queued")
	ErrOutOfRangePriority = errors.New("priority index out of range")
	ErrInvalidStatus      = errors.New("invalid status")
	// ErrStoreUnavailable wraps every backend failure. Callers may retry; the
	// engine never does.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// OutOfRangePriorityError reports a target index outside the current queue bounds.
type OutOfRangePriorityError struct {
	Index  int
	Length int
}

func (e *OutOfRangePriorityError) Error() string {
	if e.Length <= 0 {
		return fmt.Sprintf("invalid priority index %d: queue is empty", e.Index)
	}
	return fmt.Sprintf("invalid priority index %d: must be between 0 and %d, or between -1 and -%d",
		e.Index, e.Length-1, e.Length)
}

// Is lets errors.Is match the ErrOutOfRangePriority sentinel.
func (e *OutOfRangePriorityError) Is(target error) bool {
	return target == ErrOutOfRangePriority
}

// Unavailable tags a backend failure so callers can classify it.
func Unavailable(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, operation, err)
}

// ErrorKind returns a short classification for err. Unknown errors map to "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedContent):
		return "unsupported"
	case errors.Is(err, ErrDuplicateItem):
		return "conflict"
	case errors.Is(err, ErrItemNotFound):
		return "not_found"
	case errors.Is(err, ErrItemNotQueued):
		return "not_queued"
	case errors.Is(err, ErrOutOfRangePriority):
		return "out_of_range"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid"
	case errors.Is(err, ErrStoreUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}
