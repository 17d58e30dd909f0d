package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors callers may check with errors.Is().
var (
	// ErrNilDependency indicates a constructor received a nil collaborator.
	ErrNilDependency = errors.New("required dependency is nil")
)

// PersistenceError reports a failure while moving library state to or from
// a snapshot store.
type PersistenceError struct {
	// Operation is the operation that failed (e.g., "commit", "bootstrap")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for PersistenceError.
func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("persistence %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("persistence %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError. It returns nil when err
// is nil.
func NewPersistenceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
