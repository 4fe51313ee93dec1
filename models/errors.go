package models

import "errors"

// ValidationError marks a request that violates the adjudication state machine
// or an operation precondition. Handlers map it to a 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidationError creates a ValidationError with the given reason
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// NotFoundError marks a missing charge, hearing, outcome or punishment.
// Handlers map it to a 404.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

// NewNotFoundError creates a NotFoundError with the given reason
func NewNotFoundError(reason string) error {
	return &NotFoundError{Reason: reason}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError reports whether err is a NotFoundError
func IsNotFoundError(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
