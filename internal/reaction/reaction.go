// Package reaction maintains the per-comment like/dislike counters.
//
// Counters are monotonically non-decreasing: there is no decrement and
// no per-user dedup. The Redis store increments with HINCRBY, so
// concurrent reactions on one comment never lose updates.
package reaction

import "fmt"

// Kind is one of the two recognized reactions.
type Kind string

const (
	KindLike    Kind = "like"
	KindDislike Kind = "dislike"
)

// ParseKind validates a raw reaction value from the wire.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindLike:
		return KindLike, nil
	case KindDislike:
		return KindDislike, nil
	}
	return "", &InvalidKindError{Raw: raw}
}

type InvalidKindError struct {
	Raw string
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid reaction %q: must be like or dislike", e.Raw)
}

var _ error = (*InvalidKindError)(nil)

// Counters is the like/dislike pair for one comment.
// The zero value is the default for comments nobody reacted to.
type Counters struct {
	Likes    int64
	Dislikes int64
}
