package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qaueue/internal/identity"
	"qaueue/internal/queue"
)

// RefKind names how a reference addresses an item.
type RefKind string

const (
	RefIndex RefKind = "index"
	RefURL   RefKind = "url"
	RefID    RefKind = "id"
)

var indexRefPattern = regexp.MustCompile(`^-?[0-9]{1,4}$`)

// Ref is a parsed item reference as typed by a user.
type Ref struct {
	Kind  RefKind
	Index int
	Value string
}

// ParseRef classifies ref: up to four digits (optionally negative) address a
// queue position, a supported URL addresses its item, and 32 hex characters
// are an item id. Anything else fails with ErrUnsupportedContent.
func ParseRef(ref string) (Ref, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case indexRefPattern.MatchString(ref):
		index, err := strconv.Atoi(ref)
		if err != nil {
			return Ref{}, fmt.Errorf("%w: %q", queue.ErrUnsupportedContent, ref)
		}
		return Ref{Kind: RefIndex, Index: index, Value: ref}, nil
	case identity.IsSupported(ref):
		return Ref{Kind: RefURL, Value: ref}, nil
	case identity.LooksLikeID(ref):
		return Ref{Kind: RefID, Value: ref}, nil
	default:
		return Ref{}, fmt.Errorf("%w: unrecognized item reference %q", queue.ErrUnsupportedContent, ref)
	}
}
