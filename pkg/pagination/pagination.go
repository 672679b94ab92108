package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

// Params carries the normalized page/limit pair for offset pagination.
type Params struct {
	Page  int
	Limit int
}

// FromRequest reads page/limit query params, clamping out-of-range values.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: NormalizeLimit(limit)}
}

// NormalizeLimit keeps the page size inside the allowed window.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Offset converts the page/limit pair into a SQL offset.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta is the envelope block that accompanies every paginated response.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// BuildMeta computes the pagination block for a total row count.
func BuildMeta(p Params, totalItems int64) Meta {
	totalPages := totalItems / int64(p.Limit)
	if totalItems%int64(p.Limit) != 0 {
		totalPages++
	}

	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    int64(p.Page) < totalPages,
		HasPrev:    p.Page > 1,
	}
}
