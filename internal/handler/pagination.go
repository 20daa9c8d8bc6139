package handler

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit/offset query parameters for admin lists.
func ParsePagination(r *http.Request) PaginationParams {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	if offset < 0 {
		offset = 0
	}

	return PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}

// PageParams is the 1-based page form used by the blog listing.
type PageParams struct {
	Page     int
	Limit    int
	Category string
}

// ParsePage leaves out-of-range values at zero; the blog service applies its
// own defaults and caps.
func ParsePage(r *http.Request) PageParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	if page < 1 {
		page = 0
	}
	if limit < 1 {
		limit = 0
	}

	return PageParams{Page: page, Limit: limit, Category: q.Get("category")}
}
