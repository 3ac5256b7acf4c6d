package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested memory was not found.
	ErrNotFound = errors.New("memory not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyContent indicates that a memory was created with empty content.
	ErrEmptyContent = errors.New("memory content is empty")

	// ErrEmptyQuery indicates that a recall was attempted with an empty query.
	ErrEmptyQuery = errors.New("recall query is empty")

	// ErrInvalidMemoryType indicates an unknown memory type value.
	ErrInvalidMemoryType = errors.New("invalid memory type")

	// ErrInvalidImportance indicates an importance outside the defined levels.
	ErrInvalidImportance = errors.New("invalid importance level")

	// ErrStorageOperation indicates that a storage operation failed.
	ErrStorageOperation = errors.New("storage operation failed")
)

// MemoryError wraps errors with operation context.
//
// Example:
//
//	err := &MemoryError{Op: "Remember", Err: ErrEmptyContent}
//	// Error() returns: "agentmem: Remember: memory content is empty"
type MemoryError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message of the form "agentmem: <Op>: <Err>".
func (e *MemoryError) Error() string {
	return fmt.Sprintf("agentmem: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error so errors.Is and errors.As work
// through the wrapper.
func (e *MemoryError) Unwrap() error {
	return e.Err
}

// NewMemoryError creates a new MemoryError wrapping the given error.
// If err is nil, returns nil, so it is safe at every return site.
func NewMemoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &MemoryError{
		Op:  op,
		Err: err,
	}
}
