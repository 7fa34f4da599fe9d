package library

import "fmt"

// The library surfaces every failure as one of the typed errors below so
// callers (CLI, tests) can branch on the kind with errors.As instead of
// matching message strings. All of them are synchronous, non-retryable
// conditions; none are fatal to the process.

// ValidationError reports malformed input rejected at the boundary:
// empty names, negative copy counts, bad age/email/password shapes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// DuplicateKeyError reports an identity collision on insert.
type DuplicateKeyError struct {
	Entity string
	Key    string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Key)
}

// NotFoundError reports a lookup miss by id, ISBN, or email.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found with key %q", e.Entity, e.Key)
}

// StateError reports an operation that would violate a lifecycle
// invariant: borrowing an unavailable book, removing a book with copies
// on loan, returning a loan twice.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return e.Reason }

func statef(format string, args ...any) error {
	return &StateError{Reason: fmt.Sprintf(format, args...)}
}

// LimitError reports a plan-derived quantity being exceeded.
type LimitError struct {
	Reason string
}

func (e *LimitError) Error() string { return e.Reason }

func limitf(format string, args ...any) error {
	return &LimitError{Reason: fmt.Sprintf(format, args...)}
}

// AuthError reports a credential mismatch.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }
