package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// LibraryService coordinates the book catalog and rental workflows.
type LibraryService struct {
	books   repository.BookRepository
	genres  repository.BookGenreRepository
	rentals repository.RentalRepository
}

// LibraryDependencies bundles repositories for library service.
type LibraryDependencies struct {
	BookRepo   repository.BookRepository
	GenreRepo  repository.BookGenreRepository
	RentalRepo repository.RentalRepository
}

// NewLibraryService creates the service.
func NewLibraryService(deps LibraryDependencies) *LibraryService {
	return &LibraryService{
		books:   deps.BookRepo,
		genres:  deps.GenreRepo,
		rentals: deps.RentalRepo,
	}
}

// BookCreateInput describes book creation payload.
type BookCreateInput struct {
	Title           string
	Author          string
	PublicationYear *int
	ISBN            string
	TotalCopies     int
	GenreIDs        []string
}

// CreateBook adds a catalog entry with its genre set.
func (s *LibraryService) CreateBook(ctx context.Context, input BookCreateInput) (*domain.Book, error) {
	if input.TotalCopies < 0 {
		return nil, apperrors.NewValidationError("total_copies must not be negative", nil)
	}

	book := &domain.Book{
		Title:           input.Title,
		Author:          input.Author,
		PublicationYear: input.PublicationYear,
		ISBN:            input.ISBN,
		TotalCopies:     input.TotalCopies,
	}
	if err := s.books.Create(ctx, book, input.GenreIDs); err != nil {
		return nil, err
	}
	return s.books.GetByID(ctx, book.ID)
}

// SearchBooks filters the catalog by free text and genre.
func (s *LibraryService) SearchBooks(ctx context.Context, filter repository.BookFilter) ([]domain.Book, error) {
	return s.books.Search(ctx, filter)
}

// GetBook returns one catalog entry with its computed availability.
func (s *LibraryService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("book", nil)
		}
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a catalog entry.
func (s *LibraryService) DeleteBook(ctx context.Context, id string) error {
	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("book", nil)
		}
		return err
	}
	return nil
}

// CreateGenre adds a book genre.
func (s *LibraryService) CreateGenre(ctx context.Context, name string) (*domain.BookGenre, error) {
	genre := &domain.BookGenre{Name: name}
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

// ListGenres returns all book genres.
func (s *LibraryService) ListGenres(ctx context.Context) ([]domain.BookGenre, error) {
	return s.genres.List(ctx)
}

// RentBook opens a rental for the caller inside one transaction. The book row
// is locked first so concurrent rentals of the last copy serialize; a user
// holding an open rental of the same book cannot rent it again, and a book
// with no free copies cannot be rented.
func (s *LibraryService) RentBook(ctx context.Context, userID, bookID string) (*domain.Rental, error) {
	var rental *domain.Rental

	err := s.rentals.RunRental(ctx, func(tx repository.RentalTx) error {
		book, err := tx.LockBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("book", nil)
			}
			return err
		}

		open, err := tx.HasOpenRental(ctx, book.ID, userID)
		if err != nil {
			return err
		}
		if open {
			return apperrors.NewBusinessRule("you already have an active rental for this book", nil)
		}

		count, err := tx.CountOpenRentals(ctx, book.ID)
		if err != nil {
			return err
		}
		if book.TotalCopies-count <= 0 {
			return apperrors.NewBusinessRule("no copies of this book are available", nil)
		}

		rental = &domain.Rental{BookID: book.ID, UserID: userID}
		return tx.InsertRental(ctx, rental)
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

// ReturnRental closes one of the caller's open rentals. Closed rentals and
// other users' rentals are reported as missing.
func (s *LibraryService) ReturnRental(ctx context.Context, userID, rentalID string) (*domain.Rental, error) {
	rental, err := s.rentals.GetOpenForUser(ctx, rentalID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("rental", nil)
		}
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.rentals.MarkReturned(ctx, rental.ID, now); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("rental", nil)
		}
		return nil, err
	}
	rental.ReturnedAt = &now
	return rental, nil
}

// ListUserRentals returns the caller's rental history, newest first.
func (s *LibraryService) ListUserRentals(ctx context.Context, userID string) ([]domain.Rental, error) {
	return s.rentals.ListByUser(ctx, userID)
}
