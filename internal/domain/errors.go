package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("resource already exists")
)
