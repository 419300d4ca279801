package storage

import "errors"

var (
	// ErrDuplicate is returned when a write would violate a uniqueness constraint.
	ErrDuplicate = errors.New("resource already exists")

	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrHasDependents is returned when deleting a host that aliases or TXT
	// records still reference.
	ErrHasDependents = errors.New("resource is referenced by other records")
)
