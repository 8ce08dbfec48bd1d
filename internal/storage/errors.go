package storage

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrDuplicate is returned when an insert collides with an existing
	// row on a unique column, such as an agent name.
	ErrDuplicate = errors.New("storage: duplicate")
)
