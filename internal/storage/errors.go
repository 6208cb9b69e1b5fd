package storage

import "errors"

var (
	// ErrInvalidGroup is returned when a group slug is empty or not normalized.
	ErrInvalidGroup = errors.New("invalid group slug")
	// ErrNameRequired is returned when a name is empty.
	ErrNameRequired = errors.New("name is required")
	// ErrSlugConflict is returned when a group rename targets a slug whose
	// namespace is already in use.
	ErrSlugConflict = errors.New("group slug already in use")

	errInvalidID = errors.New("invalid content id")
)
