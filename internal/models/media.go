package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RecordID is the store-assigned identifier of a collection entry.
// The backend may send it as a number or a string; it is kept opaque.
type RecordID string

// UnmarshalJSON accepts both JSON numbers and strings
func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid record id %s: %w", string(data), err)
	}
	*id = RecordID(n.String())
	return nil
}

// MediaRecord is a persisted collection entry as returned by the backend
type MediaRecord struct {
	ID            RecordID  `json:"id"`
	Title         string    `json:"title"`
	OriginalTitle *string   `json:"original_title"`
	MediaType     MediaType `json:"media_type"`
	ReleaseDate   *string   `json:"release_date"`
	Runtime       *int      `json:"runtime"`
	Genres        []string  `json:"genres"`
	Director      *string   `json:"director"`
	Country       *string   `json:"country"`
	Overview      *string   `json:"overview"`
	PosterPath    *string   `json:"poster_path"`
	BackdropPath  *string   `json:"backdrop_path"`

	// External provider
	ExternalID        *int     `json:"tmdb_id"`
	ExternalRating    *float64 `json:"tmdb_rating"`
	ExternalVoteCount *int     `json:"tmdb_vote_count"`

	Cast      []CastMember `json:"cast"`
	CastNames *string      `json:"cast_names,omitempty"`
	Crew      []CrewMember `json:"crew"`

	// TV series only
	Seasons        *int            `json:"seasons"`
	Episodes       *int            `json:"episodes"`
	EpisodeDetails []EpisodeDetail `json:"episode_details"`

	// Ownership
	Seen        bool         `json:"seen"`
	UserRating  *float64     `json:"user_rating"`
	BackedUp    BackupStatus `json:"backed_up"`
	Quality     *string      `json:"quality"`
	Location    *string      `json:"location"`
	FileSize    *string      `json:"file_size"`
	LoanedTo    *string      `json:"loaned_to"`
	Notes       *string      `json:"notes"`
	DateAdded   string       `json:"date_added,omitempty"`
	DateWatched *string      `json:"date_watched"`
}

// CastMember is one persisted cast entry
type CastMember struct {
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

// CrewMember is one persisted crew entry
type CrewMember struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department,omitempty"`
}

// EpisodeDetail is the persisted shape of an episode: numbering and title only
type EpisodeDetail struct {
	SeasonNumber  *int   `json:"season_number"`
	EpisodeNumber *int   `json:"episode_number"`
	Title         string `json:"title"`
}

// AggregateStats summarises the whole collection
type AggregateStats struct {
	TotalMedia          int            `json:"total_media"`
	TotalMovies         int            `json:"total_movies"`
	TotalTVSeries       int            `json:"total_tv_series"`
	SeenCount           int            `json:"seen_count"`
	BackedUpCount       int            `json:"backed_up_count"`
	TotalRuntimeMinutes int            `json:"total_runtime_minutes"`
	QualityDistribution map[string]int `json:"quality_distribution"`
	PendingByQuality    map[string]int `json:"pending_by_quality"`
	RecentlyAdded       []MediaRecord  `json:"recently_added"`
	TopRatedByUser      []MediaRecord  `json:"top_rated_by_user"`
}

// Str returns the value of a nullable string, or "" when nil
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
