package controllers

import (
	"strconv"
	"strings"

	"github.com/amaumene/cinematheque/internal/models"
)

const (
	maxImportedCast = 10
	dateLength      = len("2006-01-02")
)

// MergeDetails combines a draft with imported provider details without destroying user input.
// Scalar fields adopt the imported value only when the draft field is empty; arrays are
// replaced wholesale when the import carries a non-empty one. original_title prefers the
// provider and title prefers the user. The input draft is never modified.
func MergeDetails(d models.Draft, details models.DetailRecord) models.Draft {
	merged := d.Clone()

	importedOriginal := firstNonBlank(details.OriginalTitle, details.Title)
	userTitle := strings.TrimSpace(d.Title)

	merged.OriginalTitle = firstNonBlank(importedOriginal, d.OriginalTitle, userTitle)
	if userTitle != "" {
		merged.Title = d.Title
	} else {
		merged.Title = firstNonBlank(importedOriginal, d.Title)
	}

	if merged.ExternalID == nil && details.ExternalID != 0 {
		id := details.ExternalID
		merged.ExternalID = &id
	}

	fillText(&merged.Overview, details.Overview)
	fillText(&merged.ReleaseDate, truncateDate(details.ReleaseDate))
	fillText(&merged.PosterPath, details.PosterPath)
	fillText(&merged.BackdropPath, details.BackdropPath)
	fillText(&merged.Country, details.Country)
	fillText(&merged.Director, directorOf(details.Crew))

	fillText(&merged.Runtime, intText(details.Runtime))
	fillText(&merged.ExternalRating, floatText(details.ExternalRating))
	fillText(&merged.ExternalVoteCount, intText(details.ExternalVoteCount))
	fillText(&merged.Seasons, intText(details.Seasons))
	fillText(&merged.Episodes, intText(details.Episodes))

	if len(details.Genres) > 0 {
		merged.Genres = append([]string(nil), details.Genres...)
	}
	if len(details.Crew) > 0 {
		merged.Crew = append([]models.CrewMember(nil), details.Crew...)
	}
	if len(details.CastList) > 0 {
		merged.CastList = importedCast(details.CastList)
	}
	if len(details.EpisodeDetails) > 0 {
		merged.EpisodeDetails = importedEpisodes(details.EpisodeDetails)
	}

	return merged
}

// directorOf returns the first crew member whose job is Director
func directorOf(crew []models.CrewMember) string {
	for _, member := range crew {
		if member.Job == "Director" {
			return member.Name
		}
	}
	return ""
}

func importedCast(cast []models.DetailCast) []models.CastListEntry {
	if len(cast) > maxImportedCast {
		cast = cast[:maxImportedCast]
	}
	entries := make([]models.CastListEntry, 0, len(cast))
	for _, member := range cast {
		entries = append(entries, models.CastListEntry{Name: member.Name, Character: member.Character})
	}
	return entries
}

func importedEpisodes(episodes []models.DetailEpisode) []models.DraftEpisode {
	out := make([]models.DraftEpisode, 0, len(episodes))
	for _, ep := range episodes {
		out = append(out, models.DraftEpisode{
			SeasonNumber:  copyInt(ep.SeasonNumber),
			EpisodeNumber: copyInt(ep.EpisodeNumber),
			Title:         ep.Title,
			Overview:      ep.Overview,
		})
	}
	return out
}

// fillText sets *field to value when the field is blank
func fillText(field *string, value string) {
	if strings.TrimSpace(*field) == "" && value != "" {
		*field = value
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// truncateDate keeps the YYYY-MM-DD prefix of a timestamp
func truncateDate(date string) string {
	if len(date) >= dateLength {
		return date[:dateLength]
	}
	return date
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatText(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
