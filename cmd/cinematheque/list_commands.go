package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/utils"
	"github.com/amaumene/cinematheque/internal/view"
	"github.com/spf13/cobra"
)

type listOptions struct {
	mediaType string
	seen      string
	backup    string
	quality   string
	search    string
	sortBy    string
	page      int
	pageSize  int
	locale    string
}

func newListCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(opts.mediaType, opts.seen, opts.backup, opts.quality, opts.search)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				state, err := buildState(filter, opts, a.cfg.SortBy, a.cfg.PageSize, a.cfg.CollationLocale)
				if err != nil {
					return err
				}

				a.store.SetFilter(filter)
				records, err := a.store.List(ctx, false)
				if err != nil {
					return err
				}

				page := view.Derive(records, state)
				if page.TotalItems == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No media found")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRecords(page.Items))
				fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d items)\n", page.Page, page.TotalPages, page.TotalItems)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.mediaType, "type", models.FilterAll, "Media type: all, movie, tv_series")
	cmd.Flags().StringVar(&opts.seen, "seen", models.FilterAll, "Seen status: all, seen, unseen")
	cmd.Flags().StringVar(&opts.backup, "backup", models.FilterAll, "Backup status: all, backed_up, not_backed_up, pending")
	cmd.Flags().StringVar(&opts.quality, "quality", models.FilterAll, "Quality: all, SD, HD, FHD, 4K, 8K")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Match title, notes or location")
	cmd.Flags().StringVar(&opts.sortBy, "sort", "", "Sort by title, size or date_added")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Items per page: 20, 50 or 100")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "Collation locale for title sorting")
	return cmd
}

// parseFilter validates the filter flags
func parseFilter(mediaType, seen, backup, quality, search string) (models.Filter, error) {
	filter := models.DefaultFilter()
	filter.SearchText = search

	if !models.IsAll(mediaType) {
		if !models.MediaType(mediaType).Valid() {
			return filter, fmt.Errorf("%w: unknown media type %q", models.ErrValidation, mediaType)
		}
		filter.MediaType = mediaType
	}

	switch seen {
	case "", models.FilterAll:
	case models.SeenFilterSeen, models.SeenFilterUnseen:
		filter.Seen = seen
	default:
		return filter, fmt.Errorf("%w: unknown seen filter %q", models.ErrValidation, seen)
	}

	if !models.IsAll(backup) {
		if !validBackup(backup) {
			return filter, fmt.Errorf("%w: unknown backup status %q", models.ErrValidation, backup)
		}
		filter.BackedUp = backup
	}

	if !models.IsAll(quality) {
		q, ok := utils.ParseQuality(quality)
		if !ok {
			return filter, fmt.Errorf("%w: unknown quality %q", models.ErrValidation, quality)
		}
		filter.Quality = string(q)
	}

	return filter, nil
}

func validBackup(value string) bool {
	switch models.BackupStatus(value) {
	case models.BackupNotBackedUp, models.BackupBackedUp, models.BackupPending:
		return true
	}
	return false
}

// buildState turns the paging flags into a view state, falling back to the configured defaults
func buildState(filter models.Filter, opts listOptions, sortBy string, pageSize int, locale string) (view.State, error) {
	if opts.sortBy != "" {
		sortBy = opts.sortBy
	}
	if opts.pageSize != 0 {
		pageSize = opts.pageSize
	}
	if opts.locale != "" {
		locale = opts.locale
	}

	state, err := view.NewState().WithSort(view.SortKey(sortBy))
	if err != nil {
		return state, err
	}
	state, err = state.WithPageSize(pageSize)
	if err != nil {
		return state, err
	}
	return state.WithFilter(filter).WithLocale(locale).WithPage(opts.page), nil
}

func renderRecords(records []models.MediaRecord) string {
	headers := []string{"ID", "Title", "Type", "Year", "Quality", "Size", "Seen", "Backup"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignLeft}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		year := ""
		if y := utils.ExtractYear(models.Str(r.ReleaseDate)); y > 0 {
			year = strconv.Itoa(y)
		}
		seen := "No"
		if r.Seen {
			seen = "Yes"
		}
		rows = append(rows, []string{
			string(r.ID),
			r.Title,
			mediaTypeLabel(r.MediaType),
			year,
			models.Str(r.Quality),
			models.Str(r.FileSize),
			seen,
			backupLabel(r.BackedUp),
		})
	}
	return renderTable(headers, rows, aligns)
}

func mediaTypeLabel(t models.MediaType) string {
	if t == models.MediaTypeTVSeries {
		return "TV Series"
	}
	return "Movie"
}

func backupLabel(status models.BackupStatus) string {
	switch status {
	case models.BackupBackedUp:
		return "Backed up"
	case models.BackupPending:
		return "Pending"
	default:
		return "Not backed up"
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				stats, err := a.store.Stats(ctx, false)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
				return nil
			})
		},
	}
}

func renderStats(stats *models.AggregateStats) string {
	if stats == nil {
		return "No statistics available"
	}

	var b strings.Builder
	b.WriteString(renderTable([]string{"Metric", "Value"}, [][]string{
		{"Total media", strconv.Itoa(stats.TotalMedia)},
		{"Movies", strconv.Itoa(stats.TotalMovies)},
		{"TV series", strconv.Itoa(stats.TotalTVSeries)},
		{"Seen", strconv.Itoa(stats.SeenCount)},
		{"Backed up", strconv.Itoa(stats.BackedUpCount)},
		{"Total runtime", fmt.Sprintf("%dh %02dm", stats.TotalRuntimeMinutes/60, stats.TotalRuntimeMinutes%60)},
	}, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n\n")

	if len(stats.QualityDistribution) > 0 {
		b.WriteString(renderTable([]string{"Quality", "Count"}, countRows(stats.QualityDistribution),
			[]columnAlignment{alignLeft, alignRight}))
		b.WriteString("\n\n")
	}

	if len(stats.PendingByQuality) == 0 {
		b.WriteString("No items pending backup")
	} else {
		b.WriteString(renderTable([]string{"Pending backup", "Count"}, countRows(stats.PendingByQuality),
			[]columnAlignment{alignLeft, alignRight}))
	}

	if len(stats.RecentlyAdded) > 0 {
		b.WriteString("\n\nRecently added\n")
		b.WriteString(renderRecords(stats.RecentlyAdded))
	}
	return b.String()
}

// countRows lists known quality tiers first, in tier order, then any other key alphabetically
func countRows(counts map[string]int) [][]string {
	rows := make([][]string, 0, len(counts))
	seen := make(map[string]bool, len(counts))
	for _, q := range models.Qualities {
		if n, ok := counts[string(q)]; ok {
			rows = append(rows, []string{string(q), strconv.Itoa(n)})
			seen[string(q)] = true
		}
	}

	var rest []string
	for key := range counts {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		rows = append(rows, []string{key, strconv.Itoa(counts[key])})
	}
	return rows
}
