// Package pagination slices result sets into numbered pages.
package pagination

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int `json:"page_number"`
	Size   int `json:"page_size"`
}

// Normalize applies defaults: page 1, DefaultPageSize, capped at MaxPageSize.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the zero-based index of the first item on the page. It
// saturates at math.MaxInt for page numbers past the addressable range.
func (p Page) Offset() int {
	p = p.Normalize()
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// Window returns the [start, end) bounds of the page within total items.
func (p Page) Window(total int) (start, end int) {
	if total < 0 {
		total = 0
	}
	size := p.Normalize().Size
	start = p.Offset()
	if start > total {
		start = total
	}
	end = total
	if total-start > size {
		end = start + size
	}
	return start, end
}

// Slice returns the page of items.
func Slice[T any](items []T, p Page) []T {
	start, end := p.Window(len(items))
	return items[start:end]
}
