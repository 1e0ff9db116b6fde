package view

import (
	"sort"
	"strings"
	"time"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/utils"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collection is the derived projection of the record set. It is never stored.
type Collection struct {
	Items      []models.MediaRecord
	Page       int // clamped, 1-based
	PageSize   int
	TotalItems int
	TotalPages int
}

// Derive filters, sorts and paginates records for the given state.
// The input slice is not modified.
func Derive(records []models.MediaRecord, state State) Collection {
	filtered := Apply(records, state.filter)
	sorted := Sort(filtered, state.sortBy, state.locale)
	return Paginate(sorted, state.page, state.pageSize)
}

// Apply keeps the records matching every filter dimension
func Apply(records []models.MediaRecord, f models.Filter) []models.MediaRecord {
	search := strings.ToLower(strings.TrimSpace(f.SearchText))
	result := make([]models.MediaRecord, 0, len(records))
	for _, r := range records {
		if !models.IsAll(f.MediaType) && string(r.MediaType) != f.MediaType {
			continue
		}
		if !models.IsAll(f.Seen) && r.Seen != (f.Seen == models.SeenFilterSeen) {
			continue
		}
		if !models.IsAll(f.BackedUp) && string(r.BackedUp) != f.BackedUp {
			continue
		}
		if !models.IsAll(f.Quality) && models.Str(r.Quality) != f.Quality {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		result = append(result, r)
	}
	return result
}

func matchesSearch(r models.MediaRecord, needle string) bool {
	for _, haystack := range []string{r.Title, models.Str(r.Notes), models.Str(r.Location)} {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of records.
// title: locale-aware ascending; size: numeric descending; date_added: newest first.
func Sort(records []models.MediaRecord, key SortKey, locale string) []models.MediaRecord {
	sorted := make([]models.MediaRecord, len(records))
	copy(sorted, records)

	switch key {
	case SortByTitle:
		tag, err := language.Parse(locale)
		if err != nil {
			tag = language.Und
		}
		collator := collate.New(tag)
		sort.SliceStable(sorted, func(i, j int) bool {
			return collator.CompareString(sorted[i].Title, sorted[j].Title) < 0
		})
	case SortBySize:
		sort.SliceStable(sorted, func(i, j int) bool {
			return utils.ParseSize(models.Str(sorted[i].FileSize)) > utils.ParseSize(models.Str(sorted[j].FileSize))
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return parseTimestamp(sorted[i].DateAdded).After(parseTimestamp(sorted[j].DateAdded))
		})
	}

	return sorted
}

// Paginate slices [(page-1)*size, page*size), clamping page into [1, totalPages]
func Paginate(records []models.MediaRecord, page, size int) Collection {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(records)
	totalPages := (total + size - 1) / size

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Collection{
		Items:      records[start:end],
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp reads a server timestamp; missing or unreadable values are the epoch
func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Unix(0, 0)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Unix(0, 0)
}
