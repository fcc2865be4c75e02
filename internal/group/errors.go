package group

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid matches every ValidationError.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate matches every DuplicateError.
	ErrDuplicate = errors.New("already exists")
	// ErrParticipantInUse is wrapped by the ValidationError returned when a
	// participant cannot be removed under the strict removal policy.
	ErrParticipantInUse = errors.New("participant in use")
)

// ValidationError reports malformed input rejected before any state change.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalid) true for every ValidationError.
func (e ValidationError) Is(target error) bool { return target == ErrInvalid }

func (e ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports a reference to an expense or participant that does
// not exist.
type NotFoundError struct {
	Kind string // "expense" or "participant"
	Key  string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateError reports an already registered participant. Callers treat it
// as success; the registry is unchanged.
type DuplicateError struct {
	Kind string
	Key  string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Key)
}

func (e DuplicateError) Is(target error) bool { return target == ErrDuplicate }

func invalid(field, format string, args ...any) error {
	return ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
