package mul

import "errors"

var (
	// ErrNotFound indicates that the index entry for a record carries the
	// absent-record sentinel. Iterating past the populated ids of a sparse
	// container returns this routinely.
	ErrNotFound = errors.New("mul: record not found")

	ErrRecordTooLarge = errors.New("mul: record too large")
)
