package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/amaumene/cinematheque/internal/export"
	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/view"
	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	var output, sortBy, locale string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the whole collection to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				if sortBy == "" {
					sortBy = a.cfg.SortBy
				}
				if _, err := view.NewState().WithSort(view.SortKey(sortBy)); err != nil {
					return err
				}
				if locale == "" {
					locale = a.cfg.CollationLocale
				}

				a.store.SetFilter(models.DefaultFilter())
				records, err := a.store.List(ctx, false)
				if err != nil {
					return err
				}
				records = view.Sort(records, view.SortKey(sortBy), locale)

				if output == "-" {
					return export.WriteCSV(cmd.OutOrStdout(), records)
				}
				if output == "" {
					output = export.Filename(time.Now())
				}
				if err := writeExport(output, records); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", len(records), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default cinematheque_export_<date>.csv)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by title, size or date_added")
	cmd.Flags().StringVar(&locale, "locale", "", "Collation locale for title sorting")
	return cmd
}

func writeExport(path string, records []models.MediaRecord) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteCSV(file, records)
}
