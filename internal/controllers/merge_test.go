package controllers

import (
	"fmt"
	"testing"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func ameliePayload() models.DetailRecord {
	return models.DetailRecord{
		ExternalID:    194,
		Title:         "Amélie",
		OriginalTitle: "Le Fabuleux Destin d'Amélie Poulain",
	}
}

func TestMergeTitleFromImportWhenDraftEmpty(t *testing.T) {
	d := models.NewDraft()

	merged := MergeDetails(d, ameliePayload())

	assert.Equal(t, "Le Fabuleux Destin d'Amélie Poulain", merged.Title)
	assert.Equal(t, "Le Fabuleux Destin d'Amélie Poulain", merged.OriginalTitle)
}

func TestMergeKeepsUserTitle(t *testing.T) {
	d := models.NewDraft()
	d.Title = "My Copy"

	merged := MergeDetails(d, ameliePayload())

	assert.Equal(t, "My Copy", merged.Title)
	assert.Equal(t, "Le Fabuleux Destin d'Amélie Poulain", merged.OriginalTitle)
}

func TestMergeOriginalTitleFallbacks(t *testing.T) {
	d := models.NewDraft()
	d.Title = "Typed"
	d.OriginalTitle = "Mine"

	// provider title stands in for a missing original title
	merged := MergeDetails(d, models.DetailRecord{Title: "Provider"})
	assert.Equal(t, "Provider", merged.OriginalTitle)

	// nothing from the provider keeps the draft's value
	merged = MergeDetails(d, models.DetailRecord{})
	assert.Equal(t, "Mine", merged.OriginalTitle)

	// and an empty draft original title falls back to the typed title
	d.OriginalTitle = ""
	merged = MergeDetails(d, models.DetailRecord{})
	assert.Equal(t, "Typed", merged.OriginalTitle)
}

func TestMergeIsNonDestructive(t *testing.T) {
	details := models.DetailRecord{
		ExternalID:        603,
		Title:             "The Matrix",
		Overview:          "imported overview",
		ReleaseDate:       "1999-03-30T00:00:00Z",
		Runtime:           intPtr(136),
		PosterPath:        "/poster.jpg",
		BackdropPath:      "/backdrop.jpg",
		ExternalRating:    floatPtr(8.2),
		ExternalVoteCount: intPtr(25000),
		Country:           "US",
		Seasons:           intPtr(0),
		Episodes:          intPtr(0),
		Crew:              []models.CrewMember{{Name: "Lana Wachowski", Job: "Director"}},
	}

	empty := models.NewDraft()
	filled := models.NewDraft()
	filled.ExternalID = intPtr(1)
	filled.Overview = "mine"
	filled.ReleaseDate = "2000-01-01"
	filled.Runtime = "90"
	filled.PosterPath = "/mine.jpg"
	filled.BackdropPath = "/mine-bg.jpg"
	filled.ExternalRating = "5"
	filled.ExternalVoteCount = "10"
	filled.Country = "FR"
	filled.Seasons = "2"
	filled.Episodes = "20"
	filled.Director = "Someone"

	fields := func(d models.Draft) map[string]string {
		id := ""
		if d.ExternalID != nil {
			id = fmt.Sprint(*d.ExternalID)
		}
		return map[string]string{
			"external_id":     id,
			"overview":        d.Overview,
			"release_date":    d.ReleaseDate,
			"runtime":         d.Runtime,
			"poster_path":     d.PosterPath,
			"backdrop_path":   d.BackdropPath,
			"external_rating": d.ExternalRating,
			"external_votes":  d.ExternalVoteCount,
			"country":         d.Country,
			"seasons":         d.Seasons,
			"episodes":        d.Episodes,
			"director":        d.Director,
			"location":        d.Location,
			"notes":           d.Notes,
			"quality":         d.Quality,
			"user_rating":     d.UserRating,
			"backed_up":       string(d.BackedUp),
			"media_type":      string(d.MediaType),
		}
	}

	fromEmpty := fields(MergeDetails(empty, details))
	assert.Equal(t, "603", fromEmpty["external_id"])
	assert.Equal(t, "imported overview", fromEmpty["overview"])
	assert.Equal(t, "1999-03-30", fromEmpty["release_date"])
	assert.Equal(t, "136", fromEmpty["runtime"])
	assert.Equal(t, "8.2", fromEmpty["external_rating"])
	assert.Equal(t, "Lana Wachowski", fromEmpty["director"])
	assert.Equal(t, "0", fromEmpty["seasons"])

	before := fields(filled)
	after := fields(MergeDetails(filled, details))
	assert.Equal(t, before, after)
}

func TestMergeArraysReplacedOnlyWhenImportNonEmpty(t *testing.T) {
	d := models.NewDraft()
	d.Genres = []string{"Mine"}
	d.CastList = []models.CastListEntry{{Name: "Me"}}
	d.Crew = []models.CrewMember{{Name: "Crew", Job: "Writer"}}

	kept := MergeDetails(d, models.DetailRecord{})
	assert.Equal(t, []string{"Mine"}, kept.Genres)
	assert.Equal(t, []models.CastListEntry{{Name: "Me"}}, kept.CastList)
	assert.Equal(t, d.Crew, kept.Crew)

	replaced := MergeDetails(d, models.DetailRecord{
		Genres: models.StringList{"Drama", "Romance"},
		Crew:   []models.CrewMember{{Name: "Jeunet", Job: "Director"}},
		EpisodeDetails: []models.DetailEpisode{
			{SeasonNumber: intPtr(1), EpisodeNumber: intPtr(1), Title: "Pilot", Overview: "plot"},
		},
	})
	assert.Equal(t, []string{"Drama", "Romance"}, replaced.Genres)
	assert.Equal(t, []models.CrewMember{{Name: "Jeunet", Job: "Director"}}, replaced.Crew)
	require.Len(t, replaced.EpisodeDetails, 1)
	assert.Equal(t, "Pilot", replaced.EpisodeDetails[0].Title)
	assert.Equal(t, []models.CastListEntry{{Name: "Me"}}, replaced.CastList)
}

func TestMergeCapsCast(t *testing.T) {
	cast := make([]models.DetailCast, 15)
	for i := range cast {
		cast[i] = models.DetailCast{Name: fmt.Sprintf("Actor %d", i), Character: "Role", ProfilePath: "/p.jpg"}
	}

	merged := MergeDetails(models.NewDraft(), models.DetailRecord{CastList: cast})

	require.Len(t, merged.CastList, 10)
	assert.Equal(t, models.CastListEntry{Name: "Actor 0", Character: "Role"}, merged.CastList[0])
	assert.Equal(t, "Actor 9", merged.CastList[9].Name)
}

func TestMergeDirectorAbsentLeavesDraft(t *testing.T) {
	d := models.NewDraft()
	d.Director = "Mine"

	merged := MergeDetails(d, models.DetailRecord{Crew: []models.CrewMember{{Name: "W", Job: "Writer"}}})
	assert.Equal(t, "Mine", merged.Director)

	merged = MergeDetails(models.NewDraft(), models.DetailRecord{Crew: []models.CrewMember{
		{Name: "W", Job: "Writer"},
		{Name: "First", Job: "Director"},
		{Name: "Second", Job: "Director"},
	}})
	assert.Equal(t, "First", merged.Director)
}

func TestMergeDoesNotModifyInput(t *testing.T) {
	d := models.NewDraft()
	d.Genres = []string{"Mine"}
	snapshot := d.Clone()

	merged := MergeDetails(d, models.DetailRecord{Genres: models.StringList{"Drama"}, Overview: "x"})
	merged.Genres[0] = "changed"

	assert.Equal(t, snapshot, d)
}

func TestTruncateDate(t *testing.T) {
	assert.Equal(t, "2001-04-25", truncateDate("2001-04-25T00:00:00"))
	assert.Equal(t, "2001-04-25", truncateDate("2001-04-25"))
	assert.Equal(t, "2001", truncateDate("2001"))
	assert.Equal(t, "", truncateDate(""))
}
