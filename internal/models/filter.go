package models

// Filter dimension values meaning "no constraint"
const FilterAll = "all"

// Seen filter values
const (
	SeenFilterSeen   = "seen"
	SeenFilterUnseen = "unseen"
)

// Filter selects collection entries. Dimensions combine with AND semantics.
type Filter struct {
	MediaType  string // all | movie | tv_series
	Seen       string // all | seen | unseen
	BackedUp   string // all | backed_up | not_backed_up | pending
	Quality    string // all | SD | HD | FHD | 4K | 8K
	SearchText string
}

// DefaultFilter matches every record
func DefaultFilter() Filter {
	return Filter{
		MediaType: FilterAll,
		Seen:      FilterAll,
		BackedUp:  FilterAll,
		Quality:   FilterAll,
	}
}

// IsAll reports whether a dimension value imposes no constraint
func IsAll(value string) bool {
	return value == "" || value == FilterAll
}
