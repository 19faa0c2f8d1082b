package domain

import "time"

// MovieGenre categorizes movies.
type MovieGenre struct {
	ID   string
	Name string
}

// Movie is a catalog entry. AvgRating is annotated at query time; a movie
// with no ratings reports 0.0.
type Movie struct {
	ID          string
	Title       string
	ReleaseDate time.Time
	Description string
	AddedByID   *string
	Genres      []MovieGenre
	AvgRating   float64
}

// Rating is one user's score for one movie, unique per (movie, user).
type Rating struct {
	ID      string
	MovieID string
	UserID  string
	Value   int
}

// Review is free-form text feedback on a movie.
type Review struct {
	ID        string
	MovieID   string
	UserID    string
	Text      string
	CreatedAt time.Time
}
