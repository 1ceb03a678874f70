package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrNilMethod is returned when an operation receives an absent or
	// zero-value method where one is required.
	ErrNilMethod = errors.New("method is required")

	// ErrManagerDisposed is returned by pipeline manager operations
	// invoked after the manager has been closed.
	ErrManagerDisposed = errors.New("pipeline manager is disposed")

	// ErrRegistryDisposed is returned by component registry operations
	// invoked after the registry has been closed.
	ErrRegistryDisposed = errors.New("component registry is disposed")

	// ErrComponentNotFound is returned when a dependency resolver cannot
	// supply an instance for a requested type/name.
	ErrComponentNotFound = errors.New("component not found")
)

// ResolutionError reports a declared interceptor the dependency resolver
// could not materialize. The pipeline build that triggered it publishes
// nothing.
type ResolutionError struct {
	Interceptor string // interceptor type as declared
	Name        string // named registration, if any
	Err         error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("resolving interceptor %s (name %q): %v", e.Interceptor, e.Name, e.Err)
	}
	return fmt.Sprintf("resolving interceptor %s: %v", e.Interceptor, e.Err)
}

// Unwrap returns the underlying resolver error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}
