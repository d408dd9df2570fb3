package util

import "strconv"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 100000
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// ClampPage keeps page within [1, MaxPage].
func ClampPage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}

// Calculate turns a 1-based page and a page size into offset/limit,
// clamping the page to [1, MaxPage] and the size to (0, MaxPageSize].
func Calculate(page, size int) (offset, limit int) {
	page = ClampPage(page)
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	offset = (page - 1) * size
	return offset, size
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
}

func NewMeta(page, offset, limit int, total int64) Meta {
	page = ClampPage(page)
	return Meta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}
