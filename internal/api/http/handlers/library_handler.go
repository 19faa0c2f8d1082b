package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-suite/internal/api/dto"
	"github.com/spec-kit/backoffice-suite/internal/auth"
	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
	"github.com/spec-kit/backoffice-suite/internal/service"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// LibraryHandler manages book catalog and rental endpoints.
type LibraryHandler struct {
	service *service.LibraryService
}

// NewLibraryHandler constructs handler.
func NewLibraryHandler(libraryService *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{service: libraryService}
}

// CreateBook POST /library/books.
func (h *LibraryHandler) CreateBook(c *fiber.Ctx) error {
	var req dto.CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	book, err := h.service.CreateBook(c.Context(), service.BookCreateInput{
		Title:           req.Title,
		Author:          req.Author,
		PublicationYear: req.PublicationYear,
		ISBN:            req.ISBN,
		TotalCopies:     req.TotalCopies,
		GenreIDs:        req.GenreIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": bookResponse(book)})
}

// ListBooks GET /library/books.
func (h *LibraryHandler) ListBooks(c *fiber.Ctx) error {
	filter := repository.BookFilter{}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if genreID := c.Query("genre_id"); genreID != "" {
		filter.GenreID = &genreID
	}

	books, err := h.service.SearchBooks(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.BookResponse, 0, len(books))
	for i := range books {
		items = append(items, bookResponse(&books[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetBook GET /library/books/:id.
func (h *LibraryHandler) GetBook(c *fiber.Ctx) error {
	book, err := h.service.GetBook(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookResponse(book)})
}

// DeleteBook DELETE /library/books/:id.
func (h *LibraryHandler) DeleteBook(c *fiber.Ctx) error {
	if err := h.service.DeleteBook(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateGenre POST /library/genres.
func (h *LibraryHandler) CreateGenre(c *fiber.Ctx) error {
	var req dto.BookGenreRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	genre, err := h.service.CreateGenre(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": bookGenreResponse(genre)})
}

// ListGenres GET /library/genres.
func (h *LibraryHandler) ListGenres(c *fiber.Ctx) error {
	genres, err := h.service.ListGenres(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.BookGenreResponse, 0, len(genres))
	for i := range genres {
		items = append(items, bookGenreResponse(&genres[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RentBook POST /library/books/:id/rent.
func (h *LibraryHandler) RentBook(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	rental, err := h.service.RentBook(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": rentalResponse(rental)})
}

// ReturnRental POST /library/rentals/:id/return.
func (h *LibraryHandler) ReturnRental(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	rental, err := h.service.ReturnRental(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rentalResponse(rental)})
}

// ListMyRentals GET /library/rentals.
func (h *LibraryHandler) ListMyRentals(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	rentals, err := h.service.ListUserRentals(c.Context(), user.ID)
	if err != nil {
		return err
	}
	items := make([]dto.RentalResponse, 0, len(rentals))
	for i := range rentals {
		items = append(items, rentalResponse(&rentals[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func bookGenreResponse(g *domain.BookGenre) dto.BookGenreResponse {
	return dto.BookGenreResponse{ID: g.ID, Name: g.Name}
}

func bookResponse(b *domain.Book) dto.BookResponse {
	genres := make([]dto.BookGenreResponse, 0, len(b.Genres))
	for i := range b.Genres {
		genres = append(genres, bookGenreResponse(&b.Genres[i]))
	}
	return dto.BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		PublicationYear: b.PublicationYear,
		ISBN:            b.ISBN,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Genres:          genres,
	}
}

func rentalResponse(r *domain.Rental) dto.RentalResponse {
	return dto.RentalResponse{
		ID:         r.ID,
		BookID:     r.BookID,
		UserID:     r.UserID,
		RentedAt:   r.RentedAt,
		ReturnedAt: r.ReturnedAt,
	}
}
