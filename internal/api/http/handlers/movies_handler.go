package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-suite/internal/api/dto"
	"github.com/spec-kit/backoffice-suite/internal/auth"
	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
	"github.com/spec-kit/backoffice-suite/internal/service"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

const releaseDateLayout = "2006-01-02"

// MoviesHandler manages movie catalog, rating and review endpoints.
type MoviesHandler struct {
	service *service.MoviesService
}

// NewMoviesHandler constructs handler.
func NewMoviesHandler(moviesService *service.MoviesService) *MoviesHandler {
	return &MoviesHandler{service: moviesService}
}

// CreateMovie POST /movies.
func (h *MoviesHandler) CreateMovie(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateMovieRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	releaseDate, err := time.Parse(releaseDateLayout, req.ReleaseDate)
	if err != nil {
		return apperrors.NewValidationError("release_date must use YYYY-MM-DD", nil)
	}

	movie, err := h.service.CreateMovie(c.Context(), user.ID, service.MovieCreateInput{
		Title:       req.Title,
		ReleaseDate: releaseDate,
		Description: req.Description,
		GenreIDs:    req.GenreIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": movieResponse(movie)})
}

// ListMovies GET /movies.
func (h *MoviesHandler) ListMovies(c *fiber.Ctx) error {
	filter := repository.MovieFilter{}
	if genreID := c.Query("genre_id"); genreID != "" {
		filter.GenreID = &genreID
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if yearStr := c.Query("release_year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return apperrors.NewValidationError("release_year must be an integer", nil)
		}
		filter.ReleaseYear = &year
	}
	if minStr := c.Query("min_rating"); minStr != "" {
		min, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return apperrors.NewValidationError("min_rating must be a number", nil)
		}
		filter.MinRating = &min
	}

	movies, err := h.service.ListMovies(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.MovieResponse, 0, len(movies))
	for i := range movies {
		items = append(items, movieResponse(&movies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetMovie GET /movies/:id.
func (h *MoviesHandler) GetMovie(c *fiber.Ctx) error {
	movie, err := h.service.GetMovie(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": movieResponse(movie)})
}

// UpdateMovie PATCH /movies/:id.
func (h *MoviesHandler) UpdateMovie(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateMovieRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.MovieUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		GenreIDs:    req.GenreIDs,
	}
	if req.ReleaseDate != nil {
		releaseDate, err := time.Parse(releaseDateLayout, *req.ReleaseDate)
		if err != nil {
			return apperrors.NewValidationError("release_date must use YYYY-MM-DD", nil)
		}
		input.ReleaseDate = &releaseDate
	}

	movie, err := h.service.UpdateMovie(c.Context(), user.ID, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": movieResponse(movie)})
}

// DeleteMovie DELETE /movies/:id.
func (h *MoviesHandler) DeleteMovie(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteMovie(c.Context(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateGenre POST /movies/genres.
func (h *MoviesHandler) CreateGenre(c *fiber.Ctx) error {
	var req dto.MovieGenreRequest
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
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": movieGenreResponse(genre)})
}

// ListGenres GET /movies/genres.
func (h *MoviesHandler) ListGenres(c *fiber.Ctx) error {
	genres, err := h.service.ListGenres(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.MovieGenreResponse, 0, len(genres))
	for i := range genres {
		items = append(items, movieGenreResponse(&genres[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RateMovie POST /movies/:id/rate.
func (h *MoviesHandler) RateMovie(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RateMovieRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	rating, err := h.service.RateMovie(c.Context(), user.ID, c.Params("id"), req.Value)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RatingResponse{
		ID:      rating.ID,
		MovieID: rating.MovieID,
		UserID:  rating.UserID,
		Value:   rating.Value,
	}})
}

// AddReview POST /movies/:id/reviews.
func (h *MoviesHandler) AddReview(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	review, err := h.service.AddReview(c.Context(), user.ID, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": reviewResponse(review)})
}

// ListReviews GET /movies/:id/reviews.
func (h *MoviesHandler) ListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviews(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, reviewResponse(&reviews[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func movieGenreResponse(g *domain.MovieGenre) dto.MovieGenreResponse {
	return dto.MovieGenreResponse{ID: g.ID, Name: g.Name}
}

func movieResponse(m *domain.Movie) dto.MovieResponse {
	genres := make([]dto.MovieGenreResponse, 0, len(m.Genres))
	for i := range m.Genres {
		genres = append(genres, movieGenreResponse(&m.Genres[i]))
	}
	return dto.MovieResponse{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate.Format(releaseDateLayout),
		Description: m.Description,
		AddedByID:   m.AddedByID,
		Genres:      genres,
		AvgRating:   m.AvgRating,
	}
}

func reviewResponse(r *domain.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:        r.ID,
		MovieID:   r.MovieID,
		UserID:    r.UserID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}
