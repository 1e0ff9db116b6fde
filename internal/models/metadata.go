package models

import (
	"bytes"
	"encoding/json"
)

// SearchResult is one item returned by the external provider's search
type SearchResult struct {
	ExternalID  int      `json:"tmdb_id"`
	Title       string   `json:"title"`
	ReleaseDate *string  `json:"release_date,omitempty"`
	PosterPath  *string  `json:"poster_path,omitempty"`
	VoteAverage *float64 `json:"vote_average,omitempty"`
}

// SearchResponse is the provider search payload. Error is set instead of Results on failure.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

// DetailRecord is the full provider record for one item
type DetailRecord struct {
	ExternalID        int             `json:"tmdb_id"`
	Title             string          `json:"title"`
	OriginalTitle     string          `json:"original_title"`
	Overview          string          `json:"overview"`
	ReleaseDate       string          `json:"release_date"`
	Runtime           *int            `json:"runtime"`
	Genres            StringList      `json:"genres"`
	PosterPath        string          `json:"poster_path"`
	BackdropPath      string          `json:"backdrop_path"`
	ExternalRating    *float64        `json:"tmdb_rating"`
	ExternalVoteCount *int            `json:"tmdb_vote_count"`
	Crew              []CrewMember    `json:"crew"`
	CastList          []DetailCast    `json:"cast_list"`
	Country           string          `json:"country"`
	Seasons           *int            `json:"seasons"`
	Episodes          *int            `json:"episodes"`
	EpisodeDetails    []DetailEpisode `json:"episode_details"`
}

// DetailCast is a cast entry as the provider sends it
type DetailCast struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// DetailEpisode is an episode as the provider sends it, plot included
type DetailEpisode struct {
	SeasonNumber  *int   `json:"season_number"`
	EpisodeNumber *int   `json:"episode_number"`
	Title         string `json:"title"`
	Overview      string `json:"overview,omitempty"`
}

// StringList decodes either a JSON array of strings or a single string.
// A single non-empty string becomes a one-element list.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}
