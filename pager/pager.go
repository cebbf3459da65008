// Package pager is the flat page-number paginator applied once the calendar
// has fixed the finest [from, to) window.
package pager

import (
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit bounds the page size a client can ask for.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and limit.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET derived from Page and Limit.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in list responses.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	Prev       *int `json:"prev,omitempty"`
	Next       *int `json:"next,omitempty"`
}

// NewMeta computes TotalPages and the neighbours of page.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	m := Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
	if page > 1 && page <= totalPages+1 {
		prev := page - 1
		m.Prev = &prev
	}
	if page < totalPages {
		next := page + 1
		m.Next = &next
	}
	return m
}

// FromQuery parses pageParam and "limit" from query values.
//
// Invalid, negative or excessive values fall back to DefaultPage and
// defaultLimit; limit is capped at MaxLimit.
func FromQuery(q url.Values, pageParam string, defaultLimit int) Params {
	if defaultLimit < 1 || defaultLimit > MaxLimit {
		defaultLimit = DefaultLimit
	}
	page := parseInt(q, pageParam, DefaultPage)
	limit := parseInt(q, "limit", defaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = defaultLimit
	}
	return Params{Page: page, Limit: limit}
}

func parseInt(q url.Values, key string, defaultVal int) int {
	raw := q.Get(key)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return n
}
