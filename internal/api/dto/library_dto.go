package dto

import "time"

// CreateBookRequest payload.
type CreateBookRequest struct {
	Title           string   `json:"title" validate:"required,max=255"`
	Author          string   `json:"author" validate:"required,max=255"`
	PublicationYear *int     `json:"publication_year"`
	ISBN            string   `json:"isbn" validate:"max=13"`
	TotalCopies     int      `json:"total_copies" validate:"gte=0"`
	GenreIDs        []string `json:"genre_ids"`
}

// BookGenreRequest payload.
type BookGenreRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// BookGenreResponse representation.
type BookGenreResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BookResponse representation; available_copies is computed from open
// rentals.
type BookResponse struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Author          string              `json:"author"`
	PublicationYear *int                `json:"publication_year"`
	ISBN            string              `json:"isbn"`
	TotalCopies     int                 `json:"total_copies"`
	AvailableCopies int                 `json:"available_copies"`
	Genres          []BookGenreResponse `json:"genres"`
}

// RentalResponse representation; returned_at is null while the rental is
// open.
type RentalResponse struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	UserID     string     `json:"user_id"`
	RentedAt   time.Time  `json:"rented_at"`
	ReturnedAt *time.Time `json:"returned_at"`
}
