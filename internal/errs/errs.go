// Package errs holds the error taxonomy shared by the store, the query engine and the services.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed input: bad pagination, unknown collections, invalid records.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStore marks a failure of the persistence layer. Match it with errors.Is.
	ErrStore = errors.New("store error")
)

// InvalidArgument wraps ErrInvalidArgument with a formatted reason.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// StoreError describes a failed persistence operation on a single key.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrStore so callers can match any store failure.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}
