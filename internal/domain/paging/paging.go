// Package paging slices an already-materialized result set into pages.
//
// Slicing never re-fetches: the same population that fed the statistics
// stage is windowed here, which keeps pagination and statistics consistent
// within one request.
package paging

import "fmt"

// Request carries the 1-based page and page size of one request.
type Request struct {
	Page  int
	Limit int
}

// Validate rejects non-positive page or limit values.
func (r Request) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidPage)
	}
	if r.Limit < 1 {
		return fmt.Errorf("%w: limit must be >= 1", ErrInvalidPage)
	}
	return nil
}

// Meta is the pagination metadata of one response.
type Meta struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewMeta builds pagination metadata for a population of total items.
func NewMeta(total int, r Request) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + r.Limit - 1) / r.Limit
	}
	return Meta{
		Total:       total,
		Page:        r.Page,
		Limit:       r.Limit,
		TotalPages:  totalPages,
		HasNextPage: r.Page < totalPages,
		HasPrevPage: r.Page > 1 && total > 0,
	}
}

// Slice returns the half-open window [(page-1)*limit, page*limit) of items.
// Out-of-range pages yield an empty slice, not an error.
func Slice[T any](items []T, r Request) []T {
	lo := (r.Page - 1) * r.Limit
	if lo >= len(items) || lo < 0 {
		return []T{}
	}
	hi := lo + r.Limit
	if hi > len(items) {
		hi = len(items)
	}
	return items[lo:hi]
}
