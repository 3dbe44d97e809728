package inventory

import (
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is the number of products shown per list page
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// Page describes one window over an ordered result set.
// TotalPages is ceil(Total/Size); an empty set has no pages but Number is still 1.
type Page struct {
	Number      int   `json:"number"`
	Size        int   `json:"size"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NewPage resolves the requested page number against total items.
// Unparsable numbers mean the first page; out-of-range numbers clamp to the first or last page.
func NewPage(total int64, requested string, size int) Page {
	if size < 1 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	pages := int((total + int64(size) - 1) / int64(size))

	number, err := strconv.Atoi(strings.TrimSpace(requested))
	if err != nil || number < 1 {
		number = 1
	}
	if pages > 0 && number > pages {
		number = pages
	}
	if pages == 0 {
		number = 1
	}

	return Page{
		Number:      number,
		Size:        size,
		Total:       total,
		TotalPages:  pages,
		HasNext:     number < pages,
		HasPrevious: number > 1,
	}
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the maximum number of items on the page.
func (p Page) Limit() int {
	return p.Size
}

// NextNumber returns the following page number, or 0 on the last page.
func (p Page) NextNumber() int {
	if !p.HasNext {
		return 0
	}
	return p.Number + 1
}

// PreviousNumber returns the preceding page number, or 0 on the first page.
func (p Page) PreviousNumber() int {
	if !p.HasPrevious {
		return 0
	}
	return p.Number - 1
}

// ParsePageSize reads a per-page value, bounded to 1..MaxPageSize; anything else gives DefaultPageSize.
func ParsePageSize(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Slice returns the part of items covered by p.
func Slice[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
