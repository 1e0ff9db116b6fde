// Package export writes the collection to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/amaumene/cinematheque/internal/utils"
)

// Columns is the fixed header row
var Columns = []string{
	"tmdb_id",
	"title",
	"original_title",
	"year",
	"watched",
	"backed_up",
	"storage",
	"size",
	"quality",
	"user_rating",
}

// Filename returns the export file name for the given day
func Filename(now time.Time) string {
	return fmt.Sprintf("cinematheque_export_%s.csv", now.Format("2006-01-02"))
}

// WriteCSV writes records, already sorted and unpaginated, as CSV
func WriteCSV(w io.Writer, records []models.MediaRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(row(record)); err != nil {
			return fmt.Errorf("failed to write record %s: %w", record.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func row(r models.MediaRecord) []string {
	externalID := ""
	if r.ExternalID != nil && *r.ExternalID != 0 {
		externalID = strconv.Itoa(*r.ExternalID)
	}

	year := ""
	if y := utils.ExtractYear(models.Str(r.ReleaseDate)); y != 0 {
		year = strconv.Itoa(y)
	}

	watched := "No"
	if r.Seen {
		watched = "Yes"
	}

	rating := ""
	if r.UserRating != nil && *r.UserRating != 0 {
		rating = strconv.FormatFloat(*r.UserRating, 'f', -1, 64)
	}

	return []string{
		externalID,
		r.Title,
		models.Str(r.OriginalTitle),
		year,
		watched,
		backupLabel(r.BackedUp),
		models.Str(r.Location),
		models.Str(r.FileSize),
		models.Str(r.Quality),
		rating,
	}
}

func backupLabel(status models.BackupStatus) string {
	switch status {
	case models.BackupBackedUp:
		return "Yes"
	case models.BackupPending:
		return "Pending"
	default:
		return "No"
	}
}
