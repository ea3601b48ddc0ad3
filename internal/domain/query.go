package domain

import (
	"fmt"     // Error formatting
	"strings" // Case-insensitive sort direction
	"time"    // Date bounds

	"github.com/shopspring/decimal" // Amount bounds
)

// Paging limits
const (
	DefaultPageSize = 10  // Page size when none is requested
	MaxPageSize     = 100 // Largest allowed page size
)

// TransactionFilter narrows a transaction query. Nil fields impose no constraint.
type TransactionFilter struct {
	IsIncome  *bool
	StartDate *time.Time       // date >= StartDate
	EndDate   *time.Time       // date <= EndDate
	MinAmount *decimal.Decimal // amount >= MinAmount
	MaxAmount *decimal.Decimal // amount <= MaxAmount
	Category  *string          // case-sensitive substring
}

// SortField names a sortable transaction attribute
type SortField string

const (
	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByCategory SortField = "category"
	SortByID       SortField = "id"
	SortByIsIncome SortField = "isIncome"
)

// Column returns the database column backing the sort field
func (s SortField) Column() (string, bool) {
	switch s {
	case SortByDate:
		return "date", true
	case SortByAmount:
		return "amount", true
	case SortByCategory:
		return "category", true
	case SortByID:
		return "id", true
	case SortByIsIncome:
		return "is_income", true
	}
	return "", false
}

// PageRequest describes one page of a sorted query
type PageRequest struct {
	Page      int       // Zero-based page index
	Size      int       // Items per page
	SortField SortField // Attribute to order by
	Desc      bool      // Descending order
}

// NewPageRequest validates raw paging parameters. The direction is case-insensitive.
func NewPageRequest(page, size int, sortField, sortDir string) (PageRequest, error) {
	if page < 0 {
		return PageRequest{}, fmt.Errorf("page must be >= 0, got %d", page)
	}
	if size < 1 || size > MaxPageSize {
		return PageRequest{}, fmt.Errorf("size must be between 1 and %d, got %d", MaxPageSize, size)
	}
	field := SortField(sortField)
	if _, ok := field.Column(); !ok {
		return PageRequest{}, fmt.Errorf("unknown sort field %q", sortField)
	}
	var desc bool
	switch strings.ToLower(sortDir) {
	case "asc":
	case "desc":
		desc = true
	default:
		return PageRequest{}, fmt.Errorf("unknown sort direction %q", sortDir)
	}
	return PageRequest{Page: page, Size: size, SortField: field, Desc: desc}, nil
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one page of a query result
type Page[T any] struct {
	Content       []T   `json:"content"`       // Items on this page
	Page          int   `json:"page"`          // Zero-based page index
	Size          int   `json:"size"`          // Requested page size
	TotalElements int64 `json:"totalElements"` // Items across all pages
	TotalPages    int   `json:"totalPages"`    // ceil(TotalElements / Size)
}

// NewPage assembles a page and computes the page count
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size)) // Ceiling division
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
