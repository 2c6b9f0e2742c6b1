package load

import "errors"

var (
	// ErrBadFile is returned when a record or place file cannot be
	// read or its structure is malformed.
	ErrBadFile = errors.New("unreadable input file")
)
