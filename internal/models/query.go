package models

import "strconv"

// SearchFilter holds the optional metadata filters of a search request.
// All values arrive as strings from the API; Normalize parses them.
type SearchFilter struct {
	Type   string `json:"type,omitempty"`
	Year   string `json:"year,omitempty"`
	Status string `json:"status,omitempty"`
}

// Filter is the normalized form used by the engine and stores.
// Zero values mean "filter absent".
type Filter struct {
	TypeCode string
	Year     int
	Status   string
}

// Normalize parses the raw filter values. An unparsable year is treated as
// absent rather than failing the query.
func (f SearchFilter) Normalize() Filter {
	out := Filter{
		TypeCode: f.Type,
		Status:   f.Status,
	}
	if f.Year != "" {
		if y, err := strconv.Atoi(f.Year); err == nil && y > 0 {
			out.Year = y
		}
	}
	return out
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f.TypeCode == "" && f.Year == 0 && f.Status == ""
}

// SearchQuery represents a search request with optional filters and paging.
type SearchQuery struct {
	Query      string       `json:"query"`
	MatchCount int          `json:"match_count,omitempty"`
	Filter     SearchFilter `json:"filter,omitempty"`
	Page       int          `json:"page,omitempty"`
	PerPage    int          `json:"per_page,omitempty"`
}

// Validate normalizes paging. An empty query is not an error: the engine
// returns an empty result set for it. The match-count default and cap come
// from the search configuration; the engine applies them.
func (q *SearchQuery) Validate() error {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = 10
	}
	if q.PerPage > 50 {
		q.PerPage = 50
	}
	return nil
}
