package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// BookFilter captures catalog search parameters.
type BookFilter struct {
	// SearchTerm matches title, author or ISBN.
	SearchTerm *string
	GenreID    *string
}

// BookRepository encapsulates book persistence. available_copies is derived
// from open rentals in every read.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book, genreIDs []string) error
	Search(ctx context.Context, filter BookFilter) ([]domain.Book, error)
	GetByID(ctx context.Context, id string) (*domain.Book, error)
	Delete(ctx context.Context, id string) error
}

// BookGenreRepository persists book genres.
type BookGenreRepository interface {
	Create(ctx context.Context, genre *domain.BookGenre) error
	List(ctx context.Context) ([]domain.BookGenre, error)
}

// RentalTx exposes the statements the rental workflow runs inside one
// transaction.
type RentalTx interface {
	// LockBook loads the book row FOR UPDATE so concurrent rental attempts on
	// the same book serialize.
	LockBook(ctx context.Context, bookID string) (*domain.Book, error)
	HasOpenRental(ctx context.Context, bookID, userID string) (bool, error)
	CountOpenRentals(ctx context.Context, bookID string) (int, error)
	InsertRental(ctx context.Context, rental *domain.Rental) error
}

// RentalRepository persists rentals and hosts the rental transaction boundary.
type RentalRepository interface {
	RunRental(ctx context.Context, fn func(tx RentalTx) error) error
	GetOpenForUser(ctx context.Context, rentalID, userID string) (*domain.Rental, error)
	MarkReturned(ctx context.Context, rentalID string, returnedAt time.Time) error
	ListByUser(ctx context.Context, userID string) ([]domain.Rental, error)
}

const bookColumns = `
        b.id, b.title, b.author, b.publication_year, b.isbn, b.total_copies,
        b.total_copies - (
            SELECT COUNT(*) FROM rentals r
            WHERE r.book_id = b.id AND r.returned_at IS NULL
        ) AS available_copies`

type bookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository instantiates repository.
func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookRepository{pool: pool}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book, genreIDs []string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO books (title, author, publication_year, isbn, total_copies)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id`
		if err := tx.QueryRow(ctx, query,
			book.Title, book.Author, book.PublicationYear, book.ISBN, book.TotalCopies,
		).Scan(&book.ID); err != nil {
			return err
		}
		book.AvailableCopies = book.TotalCopies
		return setAssociations(ctx, tx, "book_genres", "book_id", "genre_id", book.ID, genreIDs)
	})
}

func (r *bookRepository) Search(ctx context.Context, filter BookFilter) ([]domain.Book, error) {
	base := `SELECT ` + bookColumns + ` FROM books b`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.TrimSpace(*filter.SearchTerm) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(b.title ILIKE %s OR b.author ILIKE %s OR b.isbn ILIKE %s)",
			placeholder, placeholder, placeholder))
	}
	if filter.GenreID != nil {
		args = append(args, *filter.GenreID)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = b.id AND bg.genre_id=$%d)", len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY b.title", base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range books {
		genres, err := r.genresForBook(ctx, books[i].ID)
		if err != nil {
			return nil, err
		}
		books[i].Genres = genres
	}
	return books, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.id=$1`
	var b domain.Book
	if err := scanBook(r.pool.QueryRow(ctx, query, id), &b); err != nil {
		return nil, err
	}
	genres, err := r.genresForBook(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Genres = genres
	return &b, nil
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookRepository) genresForBook(ctx context.Context, bookID string) ([]domain.BookGenre, error) {
	const query = `
        SELECT g.id, g.name
        FROM book_genres bg
        JOIN library_genres g ON g.id = bg.genre_id
        WHERE bg.book_id=$1 ORDER BY g.name`
	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []domain.BookGenre
	for rows.Next() {
		var g domain.BookGenre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func scanBook(row pgx.Row, b *domain.Book) error {
	return row.Scan(
		&b.ID, &b.Title, &b.Author, &b.PublicationYear, &b.ISBN,
		&b.TotalCopies, &b.AvailableCopies,
	)
}

type bookGenreRepository struct {
	pool *pgxpool.Pool
}

// NewBookGenreRepository instantiates repository.
func NewBookGenreRepository(pool *pgxpool.Pool) BookGenreRepository {
	return &bookGenreRepository{pool: pool}
}

func (r *bookGenreRepository) Create(ctx context.Context, genre *domain.BookGenre) error {
	const query = `INSERT INTO library_genres (name) VALUES ($1) RETURNING id`
	return r.pool.QueryRow(ctx, query, genre.Name).Scan(&genre.ID)
}

func (r *bookGenreRepository) List(ctx context.Context) ([]domain.BookGenre, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM library_genres ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []domain.BookGenre
	for rows.Next() {
		var g domain.BookGenre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

type rentalRepository struct {
	pool *pgxpool.Pool
}

// NewRentalRepository instantiates repository.
func NewRentalRepository(pool *pgxpool.Pool) RentalRepository {
	return &rentalRepository{pool: pool}
}

func (r *rentalRepository) RunRental(ctx context.Context, fn func(tx RentalTx) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&rentalTx{db: tx})
	})
}

type rentalTx struct {
	db DB
}

func (t *rentalTx) LockBook(ctx context.Context, bookID string) (*domain.Book, error) {
	const query = `
        SELECT id, title, author, publication_year, isbn, total_copies
        FROM books WHERE id=$1 FOR UPDATE`
	var b domain.Book
	if err := t.db.QueryRow(ctx, query, bookID).Scan(
		&b.ID, &b.Title, &b.Author, &b.PublicationYear, &b.ISBN, &b.TotalCopies,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *rentalTx) HasOpenRental(ctx context.Context, bookID, userID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM rentals
            WHERE book_id=$1 AND user_id=$2 AND returned_at IS NULL
        )`
	var exists bool
	err := t.db.QueryRow(ctx, query, bookID, userID).Scan(&exists)
	return exists, err
}

func (t *rentalTx) CountOpenRentals(ctx context.Context, bookID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM rentals
        WHERE book_id=$1 AND returned_at IS NULL`
	var count int
	err := t.db.QueryRow(ctx, query, bookID).Scan(&count)
	return count, err
}

func (t *rentalTx) InsertRental(ctx context.Context, rental *domain.Rental) error {
	const query = `
        INSERT INTO rentals (book_id, user_id)
        VALUES ($1,$2)
        RETURNING id, rented_at`
	return t.db.QueryRow(ctx, query, rental.BookID, rental.UserID).
		Scan(&rental.ID, &rental.RentedAt)
}

func (r *rentalRepository) GetOpenForUser(ctx context.Context, rentalID, userID string) (*domain.Rental, error) {
	const query = `
        SELECT id, book_id, user_id, rented_at, returned_at
        FROM rentals
        WHERE id=$1 AND user_id=$2 AND returned_at IS NULL`
	var rental domain.Rental
	if err := r.pool.QueryRow(ctx, query, rentalID, userID).Scan(
		&rental.ID, &rental.BookID, &rental.UserID, &rental.RentedAt, &rental.ReturnedAt,
	); err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) MarkReturned(ctx context.Context, rentalID string, returnedAt time.Time) error {
	const query = `UPDATE rentals SET returned_at=$1 WHERE id=$2 AND returned_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, returnedAt, rentalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID string) ([]domain.Rental, error) {
	const query = `
        SELECT id, book_id, user_id, rented_at, returned_at
        FROM rentals WHERE user_id=$1 ORDER BY rented_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		var rental domain.Rental
		if err := rows.Scan(&rental.ID, &rental.BookID, &rental.UserID, &rental.RentedAt, &rental.ReturnedAt); err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	return rentals, rows.Err()
}
