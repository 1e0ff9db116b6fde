// Package view derives what is shown from the cached collection: filter, sort, paginate.
package view

import (
	"fmt"

	"github.com/amaumene/cinematheque/internal/models"
)

// SortKey selects the ordering of the collection
type SortKey string

const (
	SortByTitle     SortKey = "title"
	SortBySize      SortKey = "size"
	SortByDateAdded SortKey = "date_added"
)

// PageSizes lists the allowed page sizes
var PageSizes = []int{20, 50, 100}

// DefaultPageSize is the page size used when none is configured
const DefaultPageSize = 20

// State is the explicit, immutable view state. Every With* method returns a new value.
type State struct {
	filter   models.Filter
	sortBy   SortKey
	page     int
	pageSize int
	locale   string
}

// NewState returns the initial view state: all records, newest first, page 1
func NewState() State {
	return State{
		filter:   models.DefaultFilter(),
		sortBy:   SortByDateAdded,
		page:     1,
		pageSize: DefaultPageSize,
		locale:   "en",
	}
}

func (s State) Filter() models.Filter { return s.filter }
func (s State) SortBy() SortKey       { return s.sortBy }
func (s State) Page() int             { return s.page }
func (s State) PageSize() int         { return s.pageSize }
func (s State) Locale() string        { return s.locale }

// WithFilter replaces the filter. Any change resets the page to 1.
func (s State) WithFilter(f models.Filter) State {
	if f != s.filter {
		s.filter = f
		s.page = 1
	}
	return s
}

// WithSearchText replaces the search text. Any change resets the page to 1.
func (s State) WithSearchText(text string) State {
	f := s.filter
	f.SearchText = text
	return s.WithFilter(f)
}

// WithPageSize changes the page size and resets the page to 1
func (s State) WithPageSize(size int) (State, error) {
	if !validPageSize(size) {
		return s, fmt.Errorf("%w: page size must be one of %v, got %d", models.ErrValidation, PageSizes, size)
	}
	if size != s.pageSize {
		s.pageSize = size
		s.page = 1
	}
	return s, nil
}

// WithSort changes the ordering. The page is kept.
func (s State) WithSort(key SortKey) (State, error) {
	switch key {
	case SortByTitle, SortBySize, SortByDateAdded:
	default:
		return s, fmt.Errorf("%w: unknown sort key %q", models.ErrValidation, key)
	}
	s.sortBy = key
	return s, nil
}

// WithPage moves to a 1-based page. Out of range pages are clamped when the view is derived.
func (s State) WithPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.page = page
	return s
}

// WithLocale sets the BCP 47 tag used for title collation
func (s State) WithLocale(tag string) State {
	s.locale = tag
	return s
}

func validPageSize(size int) bool {
	for _, allowed := range PageSizes {
		if size == allowed {
			return true
		}
	}
	return false
}
