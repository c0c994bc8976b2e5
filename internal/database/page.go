package database

// Default and maximum page sizes for search queries.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Page selects a window of a search result.
type Page struct {
	Offset int
	Limit  int
}

// Normalize clamps the page to valid bounds.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// PagedResult is one page of items plus the number of rows matching the filters,
// regardless of the page window.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int
	Offset     int
	Limit      int
}
