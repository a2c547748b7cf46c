package core

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a missing document record or source object.
var ErrNotFound = errors.New("not found")

// ValidationError rejects an upload before any state change.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// DependencyError wraps a failed call to an external collaborator
// (embedding model, vector index, generation model, storage).
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *DependencyError) Unwrap() error { return e.Err }
