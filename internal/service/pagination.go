package service

import (
	"math"

	"github.com/stemsi/siakad-backend/internal/response"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
	// maxPage keeps the offset well inside a 32-bit integer.
	maxPage = math.MaxInt32 / maxPerPage
)

// pageWindow normalizes page parameters into a limit/offset pair.
func pageWindow(page, perPage int) (p, pp, limit, offset int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, perPage, (page - 1) * perPage
}

func newPagination(page, perPage, total int) *response.Pagination {
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}
