package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist or is
	// not visible to the requesting owner.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint,
	// such as the occurrence natural key or a user email address.
	ErrDuplicate = errors.New("persistence: duplicate record")
)
