package timeline

import "errors"

var (
	// ErrNotFound is returned when a command references an id that matches
	// neither an instance nor a master.
	ErrNotFound = errors.New("timeline: item not found")
	// ErrWrongRole is returned when an item is inserted through the wrong
	// command for its role.
	ErrWrongRole = errors.New("timeline: item role mismatch")
	// ErrDuplicateTitle is returned when a non-archived master with the same
	// lowercased title already exists. Templates deduplicate by title, not by
	// full content.
	ErrDuplicateTitle = errors.New("timeline: master title already exists")
	// ErrNotMaterialized is returned when a lifecycle command targets a ghost
	// that was never written to the instances collection. Materializing first
	// is the caller's responsibility.
	ErrNotMaterialized = errors.New("timeline: ghost has not been materialized")
)
