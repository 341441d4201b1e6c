package model

import "time"

// MovieRating is the certification of a film.
type MovieRating string

const (
	RatingUniversal MovieRating = "U"
	RatingParental  MovieRating = "UA"
	RatingAdult     MovieRating = "A"
)

// Valid reports whether r is one of the known ratings.
func (r MovieRating) Valid() bool {
	switch r {
	case RatingUniversal, RatingParental, RatingAdult:
		return true
	}
	return false
}

// Movie holds film information used when scheduling screenings and when
// rendering seat maps and listings.
type Movie struct {
	ID              uint64      // movies.id
	Title           string      // movies.title
	Description     string      // movies.description
	DurationMinutes uint32      // movies.duration_minutes
	Genre           string      // movies.genre
	Rating          MovieRating // movies.rating
	PosterURL       string      // movies.poster_url, may be empty
	ReleaseDate     time.Time   // movies.release_date (date only)
	IsActive        bool        // movies.is_active
	CreatedAt       time.Time   // movies.created_at
}
