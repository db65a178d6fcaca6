package repo

import "strings"

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Pagination is the page request every list operation accepts. Page is 1-based.
type Pagination struct {
	Page      int       `json:"page"`
	PageSize  int       `json:"pageSize"`
	SortBy    string    `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// Normalize clamps the request and keeps SortBy only when it is allowed.
func (p Pagination) Normalize(defaultSize, maxSize int, allowedSort []string, defaultSort string) Pagination {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	allowed := false
	for _, s := range allowedSort {
		if s == p.SortBy {
			allowed = true
			break
		}
	}
	if !allowed {
		p.SortBy = defaultSort
	}
	switch SortOrder(strings.ToLower(string(p.SortOrder))) {
	case SortDesc:
		p.SortOrder = SortDesc
	default:
		p.SortOrder = SortAsc
	}
	return p
}

func (p Pagination) Limit() int {
	return p.PageSize
}

func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Page is one slice of a list result.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func NewPage[T any](items []T, total int, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.PageSize > 0 {
		pages = (total + p.PageSize - 1) / p.PageSize
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: pages,
	}
}

// Slice applies p to an already filtered and sorted in-memory list.
func Slice[T any](all []T, p Pagination) []T {
	start := p.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := len(all)
	if p.PageSize > 0 && start+p.PageSize < end {
		end = start + p.PageSize
	}
	return all[start:end]
}
