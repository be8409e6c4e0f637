package filter

import "errors"

// Sentinel kinds for filter errors.
var (
	ErrInvalidFilter = errors.New("invalid filter")
)
