// Package listutil pages search results for JSON list endpoints.
package listutil

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPerPage applies when per_page is missing or unparsable.
	DefaultPerPage = 20
	// MaxPerPage caps per_page so one request cannot pull the whole table.
	MaxPerPage = 100
)

// PageParams is the page a client asked for.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// PageInfo describes the page actually served.
type PageInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// ParsePageParams reads page and per_page from a query string.
// POST: Page >= 1 and 1 <= PerPage <= MaxPerPage
func ParsePageParams(q url.Values) PageParams {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: min(perPage, MaxPerPage)}
}

// NewPageInfo clamps the requested page into range for total matches.
// An empty result is still one (empty) page.
func NewPageInfo(p PageParams, total int) PageInfo {
	perPage := p.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page := min(max(p.Page, 1), totalPages)
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Offset is the SQL OFFSET of the first row on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}
