package models

// WireRecord is the normalized, transport-ready representation of a MediaRecord.
// There is deliberately no cast_list field.
type WireRecord struct {
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

	ExternalID        *int     `json:"tmdb_id"`
	ExternalRating    *float64 `json:"tmdb_rating"`
	ExternalVoteCount *int     `json:"tmdb_vote_count"`

	Cast      []CastMember `json:"cast"`
	CastNames *string      `json:"cast_names"`
	Crew      []CrewMember `json:"crew"`

	Seasons        *int            `json:"seasons"`
	Episodes       *int            `json:"episodes"`
	EpisodeDetails []EpisodeDetail `json:"episode_details"`

	Seen        bool         `json:"seen"`
	UserRating  *float64     `json:"user_rating"`
	BackedUp    BackupStatus `json:"backed_up"`
	Quality     *string      `json:"quality"`
	Location    *string      `json:"location"`
	FileSize    *string      `json:"file_size"`
	LoanedTo    *string      `json:"loaned_to"`
	Notes       *string      `json:"notes"`
	DateWatched *string      `json:"date_watched"`
}

// WireFromRecord converts a fetched record to the update shape, unchanged.
// Used by read-modify-write helpers that must not touch the remainder of the record.
func WireFromRecord(r MediaRecord) WireRecord {
	return WireRecord{
		Title:             r.Title,
		OriginalTitle:     r.OriginalTitle,
		MediaType:         r.MediaType,
		ReleaseDate:       r.ReleaseDate,
		Runtime:           r.Runtime,
		Genres:            nonNilStrings(r.Genres),
		Director:          r.Director,
		Country:           r.Country,
		Overview:          r.Overview,
		PosterPath:        r.PosterPath,
		BackdropPath:      r.BackdropPath,
		ExternalID:        r.ExternalID,
		ExternalRating:    r.ExternalRating,
		ExternalVoteCount: r.ExternalVoteCount,
		Cast:              nonNilCast(r.Cast),
		CastNames:         r.CastNames,
		Crew:              nonNilCrew(r.Crew),
		Seasons:           r.Seasons,
		Episodes:          r.Episodes,
		EpisodeDetails:    nonNilEpisodes(r.EpisodeDetails),
		Seen:              r.Seen,
		UserRating:        r.UserRating,
		BackedUp:          r.BackedUp,
		Quality:           r.Quality,
		Location:          r.Location,
		FileSize:          r.FileSize,
		LoanedTo:          r.LoanedTo,
		Notes:             r.Notes,
		DateWatched:       r.DateWatched,
	}
}

// Record returns the wire record as an unsaved MediaRecord (no id, no date_added)
func (w WireRecord) Record() MediaRecord {
	return MediaRecord{
		Title:             w.Title,
		OriginalTitle:     w.OriginalTitle,
		MediaType:         w.MediaType,
		ReleaseDate:       w.ReleaseDate,
		Runtime:           w.Runtime,
		Genres:            w.Genres,
		Director:          w.Director,
		Country:           w.Country,
		Overview:          w.Overview,
		PosterPath:        w.PosterPath,
		BackdropPath:      w.BackdropPath,
		ExternalID:        w.ExternalID,
		ExternalRating:    w.ExternalRating,
		ExternalVoteCount: w.ExternalVoteCount,
		Cast:              w.Cast,
		CastNames:         w.CastNames,
		Crew:              w.Crew,
		Seasons:           w.Seasons,
		Episodes:          w.Episodes,
		EpisodeDetails:    w.EpisodeDetails,
		Seen:              w.Seen,
		UserRating:        w.UserRating,
		BackedUp:          w.BackedUp,
		Quality:           w.Quality,
		Location:          w.Location,
		FileSize:          w.FileSize,
		LoanedTo:          w.LoanedTo,
		Notes:             w.Notes,
		DateWatched:       w.DateWatched,
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilCast(c []CastMember) []CastMember {
	if c == nil {
		return []CastMember{}
	}
	return c
}

func nonNilCrew(c []CrewMember) []CrewMember {
	if c == nil {
		return []CrewMember{}
	}
	return c
}

func nonNilEpisodes(e []EpisodeDetail) []EpisodeDetail {
	if e == nil {
		return []EpisodeDetail{}
	}
	return e
}
