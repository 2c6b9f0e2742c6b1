package user

import "errors"

// Sentinel kinds for user configuration errors.
var (
	ErrInvalidClock   = errors.New("invalid clock value")
	ErrInvalidWeekend = errors.New("invalid weekend day")
)
