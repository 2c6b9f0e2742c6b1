package group

import "errors"

// Sentinel kinds for descriptor contract violations.
var (
	ErrNilCompute = errors.New("indicator has no compute function")
	ErrNoSubsets  = errors.New("indicator declares no interaction subsets")
	ErrNilUser    = errors.New("nil user")
)
