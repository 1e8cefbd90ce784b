package domain

import "errors"

var (
	// ErrNotFound is returned when no document matches the given identity.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a guarded state transition is refused,
	// e.g. starting a task that is already running or cancelling a
	// finished execution.
	ErrConflict = errors.New("conflict")

	// ErrValidation is returned for malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
)
