package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
)

type stubRentalTx struct {
	book        *domain.Book
	openByUser  map[string]bool
	openRentals int
	inserted    *domain.Rental
}

func (t *stubRentalTx) LockBook(_ context.Context, bookID string) (*domain.Book, error) {
	if t.book == nil || t.book.ID != bookID {
		return nil, pgx.ErrNoRows
	}
	clone := *t.book
	return &clone, nil
}

func (t *stubRentalTx) HasOpenRental(_ context.Context, bookID, userID string) (bool, error) {
	return t.openByUser[userID], nil
}

func (t *stubRentalTx) CountOpenRentals(_ context.Context, bookID string) (int, error) {
	return t.openRentals, nil
}

func (t *stubRentalTx) InsertRental(_ context.Context, rental *domain.Rental) error {
	rental.ID = "rental-1"
	rental.RentedAt = time.Now()
	clone := *rental
	t.inserted = &clone
	return nil
}

type stubRentalRepo struct {
	tx         *stubRentalTx
	rolledBack bool
	open       map[string]*domain.Rental
	returned   map[string]time.Time
}

func newStubRentalRepo(tx *stubRentalTx) *stubRentalRepo {
	return &stubRentalRepo{
		tx:       tx,
		open:     make(map[string]*domain.Rental),
		returned: make(map[string]time.Time),
	}
}

func (r *stubRentalRepo) RunRental(_ context.Context, fn func(tx repository.RentalTx) error) error {
	if err := fn(r.tx); err != nil {
		r.rolledBack = true
		return err
	}
	return nil
}

func (r *stubRentalRepo) GetOpenForUser(_ context.Context, rentalID, userID string) (*domain.Rental, error) {
	rental, ok := r.open[rentalID]
	if !ok || rental.UserID != userID || rental.ReturnedAt != nil {
		return nil, pgx.ErrNoRows
	}
	clone := *rental
	return &clone, nil
}

func (r *stubRentalRepo) MarkReturned(_ context.Context, rentalID string, returnedAt time.Time) error {
	rental, ok := r.open[rentalID]
	if !ok || rental.ReturnedAt != nil {
		return pgx.ErrNoRows
	}
	rental.ReturnedAt = &returnedAt
	r.returned[rentalID] = returnedAt
	return nil
}

func (r *stubRentalRepo) ListByUser(_ context.Context, userID string) ([]domain.Rental, error) {
	var out []domain.Rental
	for _, rental := range r.open {
		if rental.UserID == userID {
			out = append(out, *rental)
		}
	}
	return out, nil
}

type stubBookRepo struct {
	books map[string]*domain.Book
}

func (r *stubBookRepo) Create(_ context.Context, book *domain.Book, genreIDs []string) error {
	book.ID = "book-1"
	book.AvailableCopies = book.TotalCopies
	clone := *book
	r.books[book.ID] = &clone
	return nil
}

func (r *stubBookRepo) Search(_ context.Context, filter repository.BookFilter) ([]domain.Book, error) {
	var out []domain.Book
	for _, b := range r.books {
		out = append(out, *b)
	}
	return out, nil
}

func (r *stubBookRepo) GetByID(_ context.Context, id string) (*domain.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.books[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.books, id)
	return nil
}

type stubBookGenreRepo struct{}

func (stubBookGenreRepo) Create(_ context.Context, genre *domain.BookGenre) error {
	genre.ID = "genre-1"
	return nil
}

func (stubBookGenreRepo) List(_ context.Context) ([]domain.BookGenre, error) { return nil, nil }

func newLibraryFixture(tx *stubRentalTx) (*LibraryService, *stubRentalRepo) {
	rentals := newStubRentalRepo(tx)
	svc := NewLibraryService(LibraryDependencies{
		BookRepo:   &stubBookRepo{books: map[string]*domain.Book{}},
		GenreRepo:  stubBookGenreRepo{},
		RentalRepo: rentals,
	})
	return svc, rentals
}

func TestRentBookHappyPath(t *testing.T) {
	tx := &stubRentalTx{
		book:       &domain.Book{ID: "book-1", Title: "Dune", TotalCopies: 2},
		openByUser: map[string]bool{},
	}
	svc, _ := newLibraryFixture(tx)

	rental, err := svc.RentBook(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("rent failed: %v", err)
	}
	if rental.BookID != "book-1" || rental.UserID != "user-1" {
		t.Fatalf("unexpected rental: %+v", rental)
	}
	if rental.ReturnedAt != nil {
		t.Fatal("new rental must be open")
	}
}

func TestRentBookNoCopiesAvailable(t *testing.T) {
	tx := &stubRentalTx{
		book:        &domain.Book{ID: "book-1", TotalCopies: 2},
		openByUser:  map[string]bool{},
		openRentals: 2,
	}
	svc, rentals := newLibraryFixture(tx)

	_, err := svc.RentBook(context.Background(), "user-1", "book-1")
	expectCode(t, err, "BUSINESS_RULE_VIOLATION")
	if !rentals.rolledBack {
		t.Fatal("expected transaction rollback")
	}
	if tx.inserted != nil {
		t.Fatal("no rental should be inserted")
	}
}

func TestRentBookDuplicateActiveRental(t *testing.T) {
	tx := &stubRentalTx{
		book:       &domain.Book{ID: "book-1", TotalCopies: 5},
		openByUser: map[string]bool{"user-1": true},
	}
	svc, _ := newLibraryFixture(tx)

	_, err := svc.RentBook(context.Background(), "user-1", "book-1")
	expectCode(t, err, "BUSINESS_RULE_VIOLATION")
}

func TestRentUnknownBook(t *testing.T) {
	svc, _ := newLibraryFixture(&stubRentalTx{openByUser: map[string]bool{}})

	_, err := svc.RentBook(context.Background(), "user-1", "missing")
	expectCode(t, err, "NOT_FOUND")
}

func TestReturnRentalClosesIt(t *testing.T) {
	svc, rentals := newLibraryFixture(&stubRentalTx{})
	rentals.open["rental-1"] = &domain.Rental{ID: "rental-1", BookID: "book-1", UserID: "user-1"}

	rental, err := svc.ReturnRental(context.Background(), "user-1", "rental-1")
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if rental.ReturnedAt == nil {
		t.Fatal("returned_at must be set")
	}
	if _, ok := rentals.returned["rental-1"]; !ok {
		t.Fatal("repository was not updated")
	}
}

func TestReturnSomeoneElsesRentalReadsAsMissing(t *testing.T) {
	svc, rentals := newLibraryFixture(&stubRentalTx{})
	rentals.open["rental-1"] = &domain.Rental{ID: "rental-1", BookID: "book-1", UserID: "someone-else"}

	_, err := svc.ReturnRental(context.Background(), "user-1", "rental-1")
	expectCode(t, err, "NOT_FOUND")
}

func TestReturnAlreadyClosedRental(t *testing.T) {
	svc, rentals := newLibraryFixture(&stubRentalTx{})
	closedAt := time.Now()
	rentals.open["rental-1"] = &domain.Rental{ID: "rental-1", UserID: "user-1", ReturnedAt: &closedAt}

	_, err := svc.ReturnRental(context.Background(), "user-1", "rental-1")
	expectCode(t, err, "NOT_FOUND")
}
