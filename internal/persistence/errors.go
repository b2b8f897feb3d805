package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested collection does not exist.
	ErrNotFound = errors.New("persistence: not found")
)
