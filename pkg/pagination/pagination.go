// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for list endpoints and
// repository range arguments.
//
// A zero [Params] means "no range": repositories return every row.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page on HTTP requests.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds a 1-indexed page and a page size. Limit 0 is unbounded.
type Params struct {
	Page  int
	Limit int
}

// All returns Params that select every row.
func All() Params {
	return Params{}
}

// Page returns Params for the given page and limit, clamping page to 1.
func Page(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 0 {
		limit = 0
	}
	return Params{Page: page, Limit: limit}
}

// Bounded reports whether a LIMIT should be applied.
func (p Params) Bounded() bool {
	return p.Limit > 0
}

// Offset returns the SQL OFFSET value derived from Page and Limit.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta constructs pagination metadata. An unbounded range reports one page.
func NewMeta(params Params, total int) Meta {
	page := params.Page
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 0
	switch {
	case params.Limit > 0:
		totalPages = (total + params.Limit - 1) / params.Limit
	case total > 0:
		totalPages = 1
	}

	return Meta{
		Page:       page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// FromRequest parses "page" and "limit" query parameters from an HTTP request.
//
// Invalid, negative, or excessive values are clamped to [DefaultPage],
// [DefaultLimit] or [MaxLimit].
func FromRequest(r *http.Request) Params {
	page := parseIntParam(r, "page", DefaultPage)
	limit := parseIntParam(r, "limit", DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}

	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
