package models

import (
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
)

// SearchCriteria holds optional listing filters. A nil field places no
// constraint on the result.
type SearchCriteria struct {
	PropertyType    *PropertyType
	TransactionType *TransactionType
	Province        *Province
	City            *string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	MinSurface      *float64
	MaxSurface      *float64
	MinBedrooms     *int
	EnergyRating    *EnergyRating
	Bounds          *orb.Bound

	Garden    *bool
	Garage    *bool
	Terrace   *bool
	Basement  *bool
	Elevator  *bool
	Furnished *bool
}

// PageRequest selects a zero-based page of results.
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is the paginated response envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// NewPage wraps content with the paging metadata derived from total.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
		Last:          req.Page+1 >= pages,
	}
}

// MapPage converts the content of a page, keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, v := range p.Content {
		out = append(out, fn(v))
	}
	return Page[U]{
		Content:       out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Last:          p.Last,
	}
}
