package service

import (
	"github.com/buddyai/buddy-server-go/internal/config"
)

// PageParams is a requested page before clamping.
type PageParams struct {
	Page     int
	PageSize int
}

// Normalize applies the defaults: page is clamped into [1, MaxPage], a zero
// page size means the default, and any other size is clamped into the allowed
// range. The clamps keep Offset from overflowing.
func (p PageParams) Normalize() PageParams {
	page := p.Page
	switch {
	case page < config.DefaultPage:
		page = config.DefaultPage
	case page > config.MaxPage:
		page = config.MaxPage
	}

	size := p.PageSize
	switch {
	case size == 0:
		size = config.DefaultPageSize
	case size < config.MinPageSize:
		size = config.MinPageSize
	case size > config.MaxPageSize:
		size = config.MaxPageSize
	}

	return PageParams{Page: page, PageSize: size}
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPage[T any](items []T, total, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page[T]{Items: items, Total: total, TotalPages: totalPages}
}
