package services

import "errors"

var (
	// ErrInvalidState rejects a transition attempted from a terminal
	// order status.
	ErrInvalidState = errors.New("order is in a terminal status")

	// ErrNotAuthorized is deliberately generic so a caller cannot tell
	// which part of the credential check failed.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrVersionConflict rejects a save against a stale order version,
	// e.g. when two terminals edit the same order.
	ErrVersionConflict = errors.New("order was modified by another terminal")
)

// ValidationError marks a missing or malformed required field. The
// triggering action is blocked and no state is mutated.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
