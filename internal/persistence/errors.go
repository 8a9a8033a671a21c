package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique column would be repeated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKey is returned when a referenced record is missing.
	ErrForeignKey = errors.New("persistence: foreign key violation")
	// ErrStatusConflict is returned when a guarded status update finds another status.
	ErrStatusConflict = errors.New("persistence: status changed concurrently")
)
