package dto

import "time"

// CreateMovieRequest payload. release_date uses YYYY-MM-DD.
type CreateMovieRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	ReleaseDate string   `json:"release_date" validate:"required,datetime=2006-01-02"`
	Description string   `json:"description"`
	GenreIDs    []string `json:"genre_ids"`
}

// UpdateMovieRequest carries only the fields to change; absent fields are
// left untouched. A present genre_ids replaces the whole genre set.
type UpdateMovieRequest struct {
	Title       *string   `json:"title" validate:"omitempty,max=255"`
	ReleaseDate *string   `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Description *string   `json:"description"`
	GenreIDs    *[]string `json:"genre_ids"`
}

// MovieGenreRequest payload.
type MovieGenreRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// MovieGenreResponse representation.
type MovieGenreResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MovieResponse representation; avg_rating is 0.0 for unrated movies.
type MovieResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	ReleaseDate string               `json:"release_date"`
	Description string               `json:"description"`
	AddedByID   *string              `json:"added_by_id"`
	Genres      []MovieGenreResponse `json:"genres"`
	AvgRating   float64              `json:"avg_rating"`
}

// RateMovieRequest payload.
type RateMovieRequest struct {
	Value int `json:"value" validate:"required,min=1,max=10"`
}

// RatingResponse representation.
type RatingResponse struct {
	ID      string `json:"id"`
	MovieID string `json:"movie_id"`
	UserID  string `json:"user_id"`
	Value   int    `json:"value"`
}

// ReviewRequest payload.
type ReviewRequest struct {
	Text string `json:"text" validate:"required"`
}

// ReviewResponse representation.
type ReviewResponse struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movie_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
