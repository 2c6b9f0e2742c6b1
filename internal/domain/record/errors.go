package record

import "errors"

// Sentinel kinds for record contract violations.
var (
	ErrUnknownInteraction = errors.New("unknown interaction kind")
	ErrInvalidRecord      = errors.New("invalid record")
	ErrNotChronological   = errors.New("records not in chronological order")
)
