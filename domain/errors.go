package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when an id does not resolve.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports an entity or command that violates its own invariants.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a status change the activity state machine does not allow.
type InvalidTransitionError struct {
	From ActivityStatus
	To   ActivityStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition from '%s' to '%s' is not allowed", e.From, e.To)
}

// NotFoundError reports an id that does not resolve to an entity of the given kind.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError reports an operation that would break a cross-entity invariant.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsOperational reports whether err is one of the caller-facing error kinds.
func IsOperational(err error) bool {
	var (
		validationErr *ValidationError
		transitionErr *InvalidTransitionError
		notFoundErr   *NotFoundError
		conflictErr   *ConflictError
	)
	return errors.As(err, &validationErr) || errors.As(err, &transitionErr) ||
		errors.As(err, &notFoundErr) || errors.As(err, &conflictErr)
}
