package domain

import "time"

// BookGenre categorizes books.
type BookGenre struct {
	ID   string
	Name string
}

// Book is a catalog entry. AvailableCopies is computed per query from open
// rentals and is never stored.
type Book struct {
	ID              string
	Title           string
	Author          string
	PublicationYear *int
	ISBN            string
	TotalCopies     int
	Genres          []BookGenre
	AvailableCopies int
}

// Rental records one user borrowing one book. ReturnedAt is nil while the
// rental is open.
type Rental struct {
	ID         string
	BookID     string
	UserID     string
	RentedAt   time.Time
	ReturnedAt *time.Time
}
