package paging

import "errors"

// Sentinel kinds for paging errors.
var (
	ErrInvalidPage = errors.New("invalid pagination")
)
