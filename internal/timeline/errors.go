package timeline

import (
	"errors"
	"fmt"
)

// Kind categorizes a domain error. Its string form is the outcome case name
// reported by the engine.
type Kind string

const (
	// KindInvalidReference indicates an unknown track or clip id.
	KindInvalidReference Kind = "InvalidReference"

	// KindInvalidRange indicates a value outside its valid domain.
	KindInvalidRange Kind = "InvalidRange"

	// KindConflict indicates the destination interval overlaps another clip.
	KindConflict Kind = "Conflict"

	// KindMergeNotAdjacent indicates clips that do not touch within epsilon.
	KindMergeNotAdjacent Kind = "MergeNotAdjacent"

	// KindLocked indicates the target clip or track is locked.
	KindLocked Kind = "Locked"
)

// Error is a recoverable domain error.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is a human-readable description.
	Message string

	// ID is the track or clip the error concerns, when there is one.
	ID string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (id=%s)", e.Kind, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, id, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), ID: id}
}

// KindOf returns the Kind of a domain error, or "" if err is not one.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsConflict reports whether err is a Conflict error.
func IsConflict(err error) bool {
	return IsKind(err, KindConflict)
}

// IsLocked reports whether err is a Locked error.
func IsLocked(err error) bool {
	return IsKind(err, KindLocked)
}

// InvariantError is the panic value for a violated internal invariant.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "timeline invariant violated: " + e.Message
}

// assertf panics with an InvariantError when cond is false.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
	}
}
