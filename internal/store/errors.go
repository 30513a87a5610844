package store

import "errors"

var (
	// ErrNotFound is returned when an itinerary or activity ID does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedState is returned by Init when the backing document exists but
	// cannot be parsed. A store in this state must not be used.
	ErrMalformedState = errors.New("malformed itinerary document")

	// ErrPersist is returned when the backing document could not be written. The
	// in-memory state may then differ from disk until the process reloads.
	ErrPersist = errors.New("failed to persist itinerary document")
)
