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

// MoviesService coordinates the movie catalog, ratings and reviews.
type MoviesService struct {
	movies  repository.MovieRepository
	genres  repository.MovieGenreRepository
	ratings repository.RatingRepository
	reviews repository.ReviewRepository
}

// MoviesDependencies bundles repositories for movies service.
type MoviesDependencies struct {
	MovieRepo  repository.MovieRepository
	GenreRepo  repository.MovieGenreRepository
	RatingRepo repository.RatingRepository
	ReviewRepo repository.ReviewRepository
}

// NewMoviesService creates the service.
func NewMoviesService(deps MoviesDependencies) *MoviesService {
	return &MoviesService{
		movies:  deps.MovieRepo,
		genres:  deps.GenreRepo,
		ratings: deps.RatingRepo,
		reviews: deps.ReviewRepo,
	}
}

// MovieCreateInput describes movie creation payload.
type MovieCreateInput struct {
	Title       string
	ReleaseDate time.Time
	Description string
	GenreIDs    []string
}

// MovieUpdateInput carries only the fields the caller wants changed; nil
// fields keep their stored value.
type MovieUpdateInput struct {
	Title       *string
	ReleaseDate *time.Time
	Description *string
	GenreIDs    *[]string
}

// CreateMovie adds a catalog entry owned by the caller.
func (s *MoviesService) CreateMovie(ctx context.Context, userID string, input MovieCreateInput) (*domain.Movie, error) {
	movie := &domain.Movie{
		Title:       input.Title,
		ReleaseDate: input.ReleaseDate,
		Description: input.Description,
		AddedByID:   &userID,
	}
	if err := s.movies.Create(ctx, movie, input.GenreIDs); err != nil {
		return nil, err
	}
	return s.movies.GetByID(ctx, movie.ID)
}

// ListMovies returns the catalog filtered and ordered by average rating.
func (s *MoviesService) ListMovies(ctx context.Context, filter repository.MovieFilter) ([]domain.Movie, error) {
	return s.movies.List(ctx, filter)
}

// GetMovie returns one catalog entry with its computed average rating.
func (s *MoviesService) GetMovie(ctx context.Context, id string) (*domain.Movie, error) {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("movie", nil)
		}
		return nil, err
	}
	return movie, nil
}

// UpdateMovie partially updates one of the caller's movies. A movie added by
// someone else is reported as missing. Passing GenreIDs replaces the whole
// genre set.
func (s *MoviesService) UpdateMovie(ctx context.Context, userID, movieID string, input MovieUpdateInput) (*domain.Movie, error) {
	movie, err := s.movies.GetForOwner(ctx, movieID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("movie", nil)
		}
		return nil, err
	}

	if input.Title != nil {
		movie.Title = *input.Title
	}
	if input.ReleaseDate != nil {
		movie.ReleaseDate = *input.ReleaseDate
	}
	if input.Description != nil {
		movie.Description = *input.Description
	}
	if err := s.movies.Update(ctx, movie); err != nil {
		return nil, err
	}
	if input.GenreIDs != nil {
		if err := s.movies.SetGenres(ctx, movie.ID, *input.GenreIDs); err != nil {
			return nil, err
		}
	}
	return s.movies.GetForOwner(ctx, movieID, userID)
}

// DeleteMovie removes one of the caller's movies.
func (s *MoviesService) DeleteMovie(ctx context.Context, userID, movieID string) error {
	if err := s.movies.Delete(ctx, movieID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("movie", nil)
		}
		return err
	}
	return nil
}

// CreateGenre adds a movie genre.
func (s *MoviesService) CreateGenre(ctx context.Context, name string) (*domain.MovieGenre, error) {
	genre := &domain.MovieGenre{Name: name}
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

// ListGenres returns all movie genres.
func (s *MoviesService) ListGenres(ctx context.Context) ([]domain.MovieGenre, error) {
	return s.genres.List(ctx)
}

// RateMovie records the caller's 1-10 score for a movie; rating the same
// movie again replaces the previous score.
func (s *MoviesService) RateMovie(ctx context.Context, userID, movieID string, value int) (*domain.Rating, error) {
	if value < 1 || value > 10 {
		return nil, apperrors.NewValidationError("rating value must be between 1 and 10", nil)
	}
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("movie", nil)
		}
		return nil, err
	}

	rating := &domain.Rating{MovieID: movieID, UserID: userID, Value: value}
	if err := s.ratings.Upsert(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// AddReview attaches the caller's review text to a movie.
func (s *MoviesService) AddReview(ctx context.Context, userID, movieID, text string) (*domain.Review, error) {
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("movie", nil)
		}
		return nil, err
	}

	review := &domain.Review{MovieID: movieID, UserID: userID, Text: text}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviews returns a movie's reviews, newest first.
func (s *MoviesService) ListReviews(ctx context.Context, movieID string) ([]domain.Review, error) {
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("movie", nil)
		}
		return nil, err
	}
	return s.reviews.ListByMovie(ctx, movieID)
}
