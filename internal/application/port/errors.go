package port

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a guarded write finds the record changed
	// since it was read, or a unique key already exists
	ErrConflict = errors.New("conflict")
)
