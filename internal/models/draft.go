package models

import (
	"slices"
	"strconv"
	"strings"
)

// Draft is an in-progress, unsaved edit of a MediaRecord.
// Nullable fields use "" as the unset placeholder; numeric fields hold the text the user typed.
type Draft struct {
	Title         string
	OriginalTitle string
	MediaType     MediaType
	ReleaseDate   string
	Runtime       string

	// Genres holds a list; GenresText holds comma separated input and wins when Genres is empty
	Genres     []string
	GenresText string

	Director     string
	Country      string
	Overview     string
	PosterPath   string
	BackdropPath string

	ExternalID        *int
	ExternalRating    string
	ExternalVoteCount string

	// CastList is the editing view of the cast; it is never persisted as is
	CastList []CastListEntry
	Crew     []CrewMember

	Seasons        string
	Episodes       string
	EpisodeDetails []DraftEpisode

	Seen        bool
	UserRating  string
	BackedUp    BackupStatus
	Quality     string
	Location    string
	FileSize    string
	LoanedTo    string
	Notes       string
	DateWatched string
}

// CastListEntry is a cast member while editing
type CastListEntry struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

// DraftEpisode is an episode while editing. Overview may arrive from an import
// but is never persisted.
type DraftEpisode struct {
	SeasonNumber  *int
	EpisodeNumber *int
	Title         string
	Overview      string
}

// NewDraft returns an empty draft for an add action
func NewDraft() Draft {
	return Draft{
		MediaType:      MediaTypeMovie,
		BackedUp:       BackupNotBackedUp,
		Genres:         []string{},
		CastList:       []CastListEntry{},
		Crew:           []CrewMember{},
		EpisodeDetails: []DraftEpisode{},
	}
}

// DraftFromRecord builds a draft for editing an existing record
func DraftFromRecord(r MediaRecord) Draft {
	d := NewDraft()
	d.Title = r.Title
	d.OriginalTitle = Str(r.OriginalTitle)
	if r.MediaType != "" {
		d.MediaType = r.MediaType
	}
	d.ReleaseDate = Str(r.ReleaseDate)
	d.Runtime = formatInt(r.Runtime)
	d.Genres = append(d.Genres, r.Genres...)
	d.Director = Str(r.Director)
	d.Country = Str(r.Country)
	d.Overview = Str(r.Overview)
	d.PosterPath = Str(r.PosterPath)
	d.BackdropPath = Str(r.BackdropPath)
	d.ExternalID = copyInt(r.ExternalID)
	d.ExternalRating = formatFloat(r.ExternalRating)
	d.ExternalVoteCount = formatInt(r.ExternalVoteCount)
	for _, member := range r.Cast {
		d.CastList = append(d.CastList, CastListEntry{Name: member.Name, Character: member.Character})
	}
	d.Crew = append(d.Crew, r.Crew...)
	d.Seasons = formatInt(r.Seasons)
	d.Episodes = formatInt(r.Episodes)
	for _, ep := range r.EpisodeDetails {
		d.EpisodeDetails = append(d.EpisodeDetails, DraftEpisode{
			SeasonNumber:  copyInt(ep.SeasonNumber),
			EpisodeNumber: copyInt(ep.EpisodeNumber),
			Title:         ep.Title,
		})
	}
	d.Seen = r.Seen
	d.UserRating = formatFloat(r.UserRating)
	if r.BackedUp != "" {
		d.BackedUp = r.BackedUp
	}
	d.Quality = Str(r.Quality)
	d.Location = Str(r.Location)
	d.FileSize = Str(r.FileSize)
	d.LoanedTo = Str(r.LoanedTo)
	d.Notes = Str(r.Notes)
	d.DateWatched = Str(r.DateWatched)
	return d
}

// DraftFromWire turns a normalized record back into a draft
func DraftFromWire(w WireRecord) Draft {
	return DraftFromRecord(w.Record())
}

// Clone returns a deep copy so that no slice is shared between drafts
func (d Draft) Clone() Draft {
	c := d
	c.Genres = slices.Clone(d.Genres)
	c.CastList = slices.Clone(d.CastList)
	c.Crew = slices.Clone(d.Crew)
	c.EpisodeDetails = slices.Clone(d.EpisodeDetails)
	for i := range c.EpisodeDetails {
		c.EpisodeDetails[i].SeasonNumber = copyInt(d.EpisodeDetails[i].SeasonNumber)
		c.EpisodeDetails[i].EpisodeNumber = copyInt(d.EpisodeDetails[i].EpisodeNumber)
	}
	c.ExternalID = copyInt(d.ExternalID)
	return c
}

// HasTitle reports whether the draft carries a non-blank title
func (d Draft) HasTitle() bool {
	return strings.TrimSpace(d.Title) != ""
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
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
