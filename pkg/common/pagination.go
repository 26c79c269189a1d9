package common

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PaginationParams represents offset/limit pagination parameters
type PaginationParams struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DefaultPaginationParams returns default pagination parameters
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Offset: 0,
		Limit:  DefaultLimit,
	}
}

// ExtractPaginationParams extracts limit and offset from the query string.
// Malformed or negative values are reported rather than silently defaulted.
func ExtractPaginationParams(r *http.Request) (PaginationParams, error) {
	params := DefaultPaginationParams()

	if limit := r.URL.Query().Get("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil || l <= 0 {
			return params, fmt.Errorf("limit must be a positive integer")
		}
		if l > MaxLimit {
			l = MaxLimit
		}
		params.Limit = l
	}

	if offset := r.URL.Query().Get("offset"); offset != "" {
		o, err := strconv.Atoi(offset)
		if err != nil || o < 0 {
			return params, fmt.Errorf("offset must be a non-negative integer")
		}
		params.Offset = o
	}

	return params, nil
}

// BuildPaginationMeta builds pagination metadata
func BuildPaginationMeta(offset, limit, total int) *PaginationInfo {
	return &PaginationInfo{
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasNext: offset+limit < total,
		HasPrev: offset > 0,
	}
}

// Window returns the [start, end) bounds of a page over n items
func Window(n, offset, limit int) (int, int) {
	if offset >= n {
		return n, n
	}
	end := offset + limit
	if limit <= 0 || end > n {
		end = n
	}
	return offset, end
}
