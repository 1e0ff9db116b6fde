// Package normalize canonicalizes a user-edited draft into the wire shape sent to the backend.
package normalize

import (
	"strings"

	"github.com/amaumene/cinematheque/internal/models"
	"github.com/spf13/cast"
)

// Normalize converts a draft into a WireRecord. It is pure and deterministic.
func Normalize(d models.Draft) models.WireRecord {
	mediaType := d.MediaType
	if mediaType == "" {
		mediaType = models.MediaTypeMovie
	}
	backedUp := d.BackedUp
	if backedUp == "" {
		backedUp = models.BackupNotBackedUp
	}

	castMembers, castNames := castFromList(d.CastList)

	return models.WireRecord{
		Title:         d.Title,
		OriginalTitle: emptyToNil(d.OriginalTitle),
		MediaType:     mediaType,
		ReleaseDate:   emptyToNil(d.ReleaseDate),
		Runtime:       toInt(d.Runtime),
		Genres:        Genres(d.Genres, d.GenresText),
		Director:      emptyToNil(d.Director),
		Country:       emptyToNil(d.Country),
		Overview:      emptyToNil(d.Overview),
		PosterPath:    emptyToNil(d.PosterPath),
		BackdropPath:  emptyToNil(d.BackdropPath),

		ExternalID:        copyInt(d.ExternalID),
		ExternalRating:    toFloat(d.ExternalRating),
		ExternalVoteCount: toInt(d.ExternalVoteCount),

		Cast:      castMembers,
		CastNames: castNames,
		Crew:      crew(d.Crew),

		Seasons:        toInt(d.Seasons),
		Episodes:       toInt(d.Episodes),
		EpisodeDetails: EpisodeDetails(mediaType, d.EpisodeDetails),

		Seen:        d.Seen,
		UserRating:  toFloat(d.UserRating),
		BackedUp:    backedUp,
		Quality:     emptyToNil(d.Quality),
		Location:    emptyToNil(d.Location),
		FileSize:    emptyToNil(d.FileSize),
		LoanedTo:    emptyToNil(d.LoanedTo),
		Notes:       emptyToNil(d.Notes),
		DateWatched: emptyToNil(d.DateWatched),
	}
}

// Genres returns the list unchanged when present, otherwise splits text on commas,
// trimming and dropping empty entries. The result is never nil.
func Genres(list []string, text string) []string {
	if len(list) > 0 {
		return append([]string(nil), list...)
	}
	genres := []string{}
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			genres = append(genres, part)
		}
	}
	return genres
}

// EpisodeDetails keeps numbering and title for tv series and drops entries carrying
// neither season, episode number nor title. Movies never persist episodes.
func EpisodeDetails(mediaType models.MediaType, episodes []models.DraftEpisode) []models.EpisodeDetail {
	details := []models.EpisodeDetail{}
	if mediaType != models.MediaTypeTVSeries {
		return details
	}
	for _, ep := range episodes {
		if ep.SeasonNumber == nil && ep.EpisodeNumber == nil && ep.Title == "" {
			continue
		}
		details = append(details, models.EpisodeDetail{
			SeasonNumber:  copyInt(ep.SeasonNumber),
			EpisodeNumber: copyInt(ep.EpisodeNumber),
			Title:         ep.Title,
		})
	}
	return details
}

// castFromList derives the persisted cast and the legacy comma-joined cast_names
func castFromList(list []models.CastListEntry) ([]models.CastMember, *string) {
	members := make([]models.CastMember, 0, len(list))
	var names []string
	for _, entry := range list {
		members = append(members, models.CastMember{
			Name:        entry.Name,
			Character:   entry.Character,
			ProfilePath: nil,
		})
		if entry.Name != "" {
			names = append(names, entry.Name)
		}
	}
	return members, emptyToNil(strings.Join(names, ", "))
}

func crew(c []models.CrewMember) []models.CrewMember {
	if c == nil {
		return []models.CrewMember{}
	}
	return append([]models.CrewMember(nil), c...)
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return nil
	}
	return &f
}

func toInt(s string) *int {
	f := toFloat(s)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
