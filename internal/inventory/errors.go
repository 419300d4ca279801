package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a record's name is already taken.
	ErrConflict = errors.New("record already exists")

	// ErrInUse is returned when deleting a host that other records reference.
	ErrInUse = fmt.Errorf("%w: referenced by aliases or txt records", ErrConflict)

	// ErrNotFound is returned when no record has the requested ID.
	ErrNotFound = errors.New("record not found")
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// StorageError wraps a persistence failure. Its message does not include the
// underlying cause so it is safe to show to clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage failure during " + e.Op
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
