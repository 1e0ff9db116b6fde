package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/amaumene/cinematheque/internal/controllers"
	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/utils"
	"github.com/spf13/cobra"
)

// draftFlags binds the editable fields of a draft. Only flags set on the command line
// are applied, so an edit leaves the other fields untouched.
type draftFlags struct {
	title         string
	originalTitle string
	mediaType     string
	releaseDate   string
	runtime       string
	genres        string
	director      string
	country       string
	overview      string
	seasons       string
	episodes      string
	seen          bool
	rating        string
	backup        string
	quality       string
	location      string
	fileSize      string
	loanedTo      string
	notes         string
	watchedOn     string
	importID      int
	lookup        bool
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.title, "title", "t", "", "Title")
	flags.StringVar(&f.originalTitle, "original-title", "", "Original title")
	flags.StringVar(&f.mediaType, "type", "", "Media type: movie or tv_series")
	flags.StringVar(&f.releaseDate, "release-date", "", "Release date (YYYY-MM-DD)")
	flags.StringVar(&f.runtime, "runtime", "", "Runtime in minutes")
	flags.StringVar(&f.genres, "genres", "", "Comma separated genres")
	flags.StringVar(&f.director, "director", "", "Director")
	flags.StringVar(&f.country, "country", "", "Country")
	flags.StringVar(&f.overview, "overview", "", "Overview")
	flags.StringVar(&f.seasons, "seasons", "", "Number of seasons")
	flags.StringVar(&f.episodes, "episodes", "", "Number of episodes")
	flags.BoolVar(&f.seen, "seen", false, "Mark as seen")
	flags.StringVar(&f.rating, "rating", "", "Personal rating")
	flags.StringVar(&f.backup, "backup", "", "Backup status: not_backed_up, backed_up, pending")
	flags.StringVar(&f.quality, "quality", "", "Quality: SD, HD, FHD, 4K, 8K")
	flags.StringVar(&f.location, "location", "", "Storage location")
	flags.StringVar(&f.fileSize, "size", "", "File size, e.g. 4.5 GB")
	flags.StringVar(&f.loanedTo, "loaned-to", "", "Who borrowed it")
	flags.StringVar(&f.notes, "notes", "", "Notes")
	flags.StringVar(&f.watchedOn, "watched-on", "", "Date watched (YYYY-MM-DD)")
	flags.IntVar(&f.importID, "import", 0, "Import metadata for this provider id")
	flags.BoolVar(&f.lookup, "lookup", false, "Search the provider by title and import the closest match")
}

// validate checks the enumerated flags before anything is sent
func (f *draftFlags) validate(cmd *cobra.Command) error {
	changed := cmd.Flags().Changed
	if changed("type") && !models.MediaType(f.mediaType).Valid() {
		return fmt.Errorf("%w: unknown media type %q", models.ErrValidation, f.mediaType)
	}
	if changed("backup") && !validBackup(f.backup) {
		return fmt.Errorf("%w: unknown backup status %q", models.ErrValidation, f.backup)
	}
	if changed("quality") && f.quality != "" {
		if _, ok := utils.ParseQuality(f.quality); !ok {
			return fmt.Errorf("%w: unknown quality %q", models.ErrValidation, f.quality)
		}
	}
	return nil
}

// apply copies the flags set on cmd into d
func (f *draftFlags) apply(cmd *cobra.Command, d *models.Draft) {
	changed := cmd.Flags().Changed
	text := []struct {
		name  string
		field *string
		value string
	}{
		{"title", &d.Title, f.title},
		{"original-title", &d.OriginalTitle, f.originalTitle},
		{"release-date", &d.ReleaseDate, f.releaseDate},
		{"runtime", &d.Runtime, f.runtime},
		{"director", &d.Director, f.director},
		{"country", &d.Country, f.country},
		{"overview", &d.Overview, f.overview},
		{"seasons", &d.Seasons, f.seasons},
		{"episodes", &d.Episodes, f.episodes},
		{"rating", &d.UserRating, f.rating},
		{"location", &d.Location, f.location},
		{"size", &d.FileSize, f.fileSize},
		{"loaned-to", &d.LoanedTo, f.loanedTo},
		{"notes", &d.Notes, f.notes},
		{"watched-on", &d.DateWatched, f.watchedOn},
	}
	for _, t := range text {
		if changed(t.name) {
			*t.field = t.value
		}
	}

	if changed("type") {
		d.MediaType = models.MediaType(f.mediaType)
	}
	if changed("genres") {
		d.Genres = []string{}
		d.GenresText = f.genres
	}
	if changed("seen") {
		d.Seen = f.seen
	}
	if changed("backup") {
		d.BackedUp = models.BackupStatus(f.backup)
	}
	if changed("quality") {
		d.Quality = ""
		if q, ok := utils.ParseQuality(f.quality); ok {
			d.Quality = string(q)
		}
	}
}

// runEditSession applies the flags, imports metadata when asked, then submits
func runEditSession(ctx context.Context, cmd *cobra.Command, session *controllers.EditSession, flags *draftFlags) (*models.MediaRecord, error) {
	if err := session.Edit(func(d *models.Draft) { flags.apply(cmd, d) }); err != nil {
		return nil, err
	}

	target := models.SearchResult{ExternalID: flags.importID}
	if flags.importID == 0 && flags.lookup {
		// A failed lookup has already been reported; the draft is saved as typed
		results, _ := session.Search(ctx, "")
		if best, ok := controllers.BestMatch(results, session.Draft().Title); ok {
			target = best
		}
	}

	if target.ExternalID > 0 {
		err := session.Select(ctx, target)
		// The draft can still be saved with what the user typed
		if err != nil && !errors.Is(err, models.ErrDetailsUnavailable) {
			session.Cancel()
			return nil, err
		}
	}

	saved, err := session.Submit(ctx)
	if err != nil {
		session.Cancel()
		return nil, err
	}
	return saved, nil
}

func newSearchCommand() *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search the metadata provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !models.MediaType(mediaType).Valid() {
				return fmt.Errorf("%w: unknown media type %q", models.ErrValidation, mediaType)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				results, err := a.importer.Search(ctx, args[0], models.MediaType(mediaType))
				if err != nil {
					return err
				}
				if len(results) == 0 {
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderResults(results))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&mediaType, "type", string(models.MediaTypeMovie), "Media type: movie or tv_series")
	return cmd
}

func renderResults(results []models.SearchResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		year := ""
		if y := utils.ExtractYear(models.Str(r.ReleaseDate)); y > 0 {
			year = strconv.Itoa(y)
		}
		rating := ""
		if r.VoteAverage != nil {
			rating = strconv.FormatFloat(*r.VoteAverage, 'f', 1, 64)
		}
		rows = append(rows, []string{strconv.Itoa(r.ExternalID), r.Title, year, rating})
	}
	return renderTable([]string{"Provider ID", "Title", "Year", "Rating"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight})
}

func newAddCommand() *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a movie or TV series",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(cmd); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				session := controllers.NewAddSession(a.store, a.importer, a.notifier, a.logger)
				saved, err := runEditSession(ctx, cmd, session, &flags)
				if err != nil {
					return err
				}
				if saved != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %q (id %s)\n", saved.Title, saved.ID)
				}
				return nil
			})
		},
	}

	flags.bind(cmd)
	return cmd
}

func newEditCommand() *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(cmd); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				record, err := a.findRecord(ctx, args[0])
				if err != nil {
					return err
				}
				session := controllers.NewEditSession(record, a.store, a.importer, a.notifier, a.logger)
				_, err = runEditSession(ctx, cmd, session, &flags)
				return err
			})
		},
	}

	flags.bind(cmd)
	return cmd
}

func newDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				_, err := a.store.Delete(ctx, models.RecordID(args[0]), confirmer(cmd, yes))
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newToggleSeenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-seen <id>",
		Short: "Flip the seen flag of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				record, err := a.findRecord(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = a.store.ToggleSeen(ctx, record)
				return err
			})
		},
	}
}

func newToggleBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-backup <id>",
		Short: "Advance the backup status of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				record, err := a.findRecord(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = a.store.ToggleBackup(ctx, record)
				return err
			})
		},
	}
}
