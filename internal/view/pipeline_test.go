package view

import (
	"fmt"
	"testing"
	"time"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func makeRecords(n int) []models.MediaRecord {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]models.MediaRecord, n)
	for i := range records {
		records[i] = models.MediaRecord{
			ID:        models.RecordID(fmt.Sprint(i + 1)),
			Title:     fmt.Sprintf("Title %03d", i+1),
			MediaType: models.MediaTypeMovie,
			DateAdded: base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		}
	}
	return records
}

func TestPaginateScenario(t *testing.T) {
	records := makeRecords(45)

	page1 := Paginate(records, 1, 20)
	page2 := Paginate(records, 2, 20)
	page3 := Paginate(records, 3, 20)

	assert.Equal(t, records[0:20], page1.Items)
	assert.Equal(t, records[20:40], page2.Items)
	assert.Equal(t, records[40:45], page3.Items)
	assert.Len(t, page3.Items, 5)
	assert.Equal(t, 3, page3.TotalPages)

	clamped := Paginate(records, 4, 20)
	assert.Equal(t, 3, clamped.Page)
	assert.Equal(t, page3.Items, clamped.Items)
}

func TestPaginateBounds(t *testing.T) {
	for _, size := range PageSizes {
		for _, n := range []int{0, 1, 19, 20, 21, 99, 100, 101, 250} {
			records := makeRecords(n)
			pages := (n + size - 1) / size
			for page := 1; page <= pages; page++ {
				c := Paginate(records, page, size)
				assert.NotEmpty(t, c.Items, "n=%d size=%d page=%d", n, size, page)
				assert.Equal(t, page, c.Page)
			}
		}
	}
}

func TestPaginateEmptyCollection(t *testing.T) {
	c := Paginate(nil, 1, 20)

	assert.Empty(t, c.Items)
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, 0, c.TotalPages)
}

func TestPaginateClampsAfterShrink(t *testing.T) {
	state := NewState().WithPage(5)

	c := Derive(makeRecords(30), state)

	assert.Equal(t, 2, c.Page)
	assert.Len(t, c.Items, 10)
}

func TestSortByTitleIsLocaleAware(t *testing.T) {
	records := []models.MediaRecord{
		{Title: "Zodiac"},
		{Title: "élan"},
		{Title: ""},
		{Title: "Amélie"},
		{Title: "alien"},
	}

	sorted := Sort(records, SortByTitle, "fr")

	titles := make([]string, len(sorted))
	for i, r := range sorted {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"", "alien", "Amélie", "élan", "Zodiac"}, titles)
}

func TestSortBySizeDescending(t *testing.T) {
	records := []models.MediaRecord{
		{Title: "a", FileSize: strPtr("1.5 GB")},
		{Title: "b", FileSize: nil},
		{Title: "c", FileSize: strPtr("42")},
		{Title: "d", FileSize: strPtr("unknown")},
	}

	sorted := Sort(records, SortBySize, "en")

	assert.Equal(t, "c", sorted[0].Title)
	assert.Equal(t, "a", sorted[1].Title)
	// b and d both count as 0 and keep their relative order
	assert.Equal(t, "b", sorted[2].Title)
	assert.Equal(t, "d", sorted[3].Title)
}

func TestSortByDateAddedNewestFirst(t *testing.T) {
	records := []models.MediaRecord{
		{Title: "old", DateAdded: "2023-01-01T10:00:00Z"},
		{Title: "missing"},
		{Title: "new", DateAdded: "2024-06-01T10:00:00.123456"},
	}

	sorted := Sort(records, SortByDateAdded, "en")

	assert.Equal(t, "new", sorted[0].Title)
	assert.Equal(t, "old", sorted[1].Title)
	assert.Equal(t, "missing", sorted[2].Title)
}

func TestSortDoesNotModifyInput(t *testing.T) {
	records := []models.MediaRecord{{Title: "b"}, {Title: "a"}}

	_ = Sort(records, SortByTitle, "en")

	assert.Equal(t, "b", records[0].Title)
}

func TestApplyFilter(t *testing.T) {
	records := []models.MediaRecord{
		{Title: "Heat", MediaType: models.MediaTypeMovie, Seen: true, BackedUp: models.BackupBackedUp, Quality: strPtr("FHD")},
		{Title: "The Wire", MediaType: models.MediaTypeTVSeries, Seen: false, BackedUp: models.BackupPending, Quality: strPtr("HD"), Location: strPtr("Shelf B")},
		{Title: "Ronin", MediaType: models.MediaTypeMovie, Seen: false, BackedUp: models.BackupNotBackedUp, Notes: strPtr("Loaned to Sam")},
	}

	tests := []struct {
		name   string
		filter func(f *models.Filter)
		want   []string
	}{
		{"all", func(f *models.Filter) {}, []string{"Heat", "The Wire", "Ronin"}},
		{"movies", func(f *models.Filter) { f.MediaType = "movie" }, []string{"Heat", "Ronin"}},
		{"unseen", func(f *models.Filter) { f.Seen = "unseen" }, []string{"The Wire", "Ronin"}},
		{"seen", func(f *models.Filter) { f.Seen = "seen" }, []string{"Heat"}},
		{"pending", func(f *models.Filter) { f.BackedUp = "pending" }, []string{"The Wire"}},
		{"quality", func(f *models.Filter) { f.Quality = "FHD" }, []string{"Heat"}},
		{"search title", func(f *models.Filter) { f.SearchText = "HEA" }, []string{"Heat"}},
		{"search location", func(f *models.Filter) { f.SearchText = "shelf" }, []string{"The Wire"}},
		{"search notes", func(f *models.Filter) { f.SearchText = "sam" }, []string{"Ronin"}},
		{"and semantics", func(f *models.Filter) { f.MediaType = "movie"; f.Seen = "unseen" }, []string{"Ronin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := models.DefaultFilter()
			tt.filter(&f)

			got := Apply(records, f)

			titles := []string{}
			for _, r := range got {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestStateFilterChangesResetPage(t *testing.T) {
	state := NewState().WithPage(3)

	f := state.Filter()
	f.Quality = "4K"
	assert.Equal(t, 1, state.WithFilter(f).Page())

	assert.Equal(t, 1, state.WithSearchText("heat").Page())

	resized, err := state.WithPageSize(50)
	require.NoError(t, err)
	assert.Equal(t, 1, resized.Page())

	// unchanged inputs keep the page
	assert.Equal(t, 3, state.WithFilter(state.Filter()).Page())

	// the original value is untouched
	assert.Equal(t, 3, state.Page())
}

func TestStateSortKeepsPage(t *testing.T) {
	state := NewState().WithPage(2)

	sorted, err := state.WithSort(SortByTitle)

	require.NoError(t, err)
	assert.Equal(t, 2, sorted.Page())
	assert.Equal(t, SortByTitle, sorted.SortBy())
}

func TestStateRejectsInvalidValues(t *testing.T) {
	state := NewState()

	_, err := state.WithPageSize(30)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = state.WithSort("rating")
	assert.ErrorIs(t, err, models.ErrValidation)
}
