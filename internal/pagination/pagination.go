package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params are the page/limit query parameters of a list endpoint.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Meta describes the returned page.
type Meta struct {
	CurrentPage  int  `json:"current_page"`
	PerPage      int  `json:"per_page"`
	TotalPages   int  `json:"total_pages"`
	TotalRecords int  `json:"total_records"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// ParseParams reads ?page= and ?limit=. Missing or non-positive values fall
// back to the defaults; limit is capped at MaxLimit.
func ParseParams(r *http.Request) Params {
	q := r.URL.Query()
	return Params{
		Page:  positive(q.Get("page"), DefaultPage),
		Limit: positive(q.Get("limit"), DefaultLimit),
	}.normalized()
}

func positive(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return fallback
}

func (p Params) normalized() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Slice returns the requested page of items, which keep their order, plus
// the page metadata. A page past the end is empty, never nil.
func Slice[T any](items []T, p Params) ([]T, Meta) {
	p = p.normalized()

	total := len(items)
	pages := (total + p.Limit - 1) / p.Limit
	if pages < 1 {
		pages = 1
	}
	meta := Meta{
		CurrentPage:  p.Page,
		PerPage:      p.Limit,
		TotalPages:   pages,
		TotalRecords: total,
		HasNext:      p.Page < pages,
		HasPrevious:  p.Page > 1,
	}

	start := (p.Page - 1) * p.Limit
	if start >= total {
		return []T{}, meta
	}
	end := min(start+p.Limit, total)
	return items[start:end], meta
}
