package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
)

type stubMovieRepo struct {
	movies  map[string]*domain.Movie
	genres  map[string][]string
	ratings *stubRatingRepo
}

func newStubMovieRepo(ratings *stubRatingRepo) *stubMovieRepo {
	return &stubMovieRepo{
		movies:  make(map[string]*domain.Movie),
		genres:  make(map[string][]string),
		ratings: ratings,
	}
}

func (r *stubMovieRepo) Create(_ context.Context, movie *domain.Movie, genreIDs []string) error {
	movie.ID = "movie-" + movie.Title
	clone := *movie
	r.movies[movie.ID] = &clone
	r.genres[movie.ID] = append([]string{}, genreIDs...)
	return nil
}

func (r *stubMovieRepo) List(_ context.Context, _ repository.MovieFilter) ([]domain.Movie, error) {
	var out []domain.Movie
	for id := range r.movies {
		m, _ := r.GetByID(context.Background(), id)
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubMovieRepo) GetByID(_ context.Context, id string) (*domain.Movie, error) {
	m, ok := r.movies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *m
	clone.AvgRating = r.ratings.average(id)
	return &clone, nil
}

func (r *stubMovieRepo) GetForOwner(_ context.Context, id, userID string) (*domain.Movie, error) {
	m, ok := r.movies[id]
	if !ok || m.AddedByID == nil || *m.AddedByID != userID {
		return nil, pgx.ErrNoRows
	}
	clone := *m
	clone.AvgRating = r.ratings.average(id)
	return &clone, nil
}

func (r *stubMovieRepo) Update(_ context.Context, movie *domain.Movie) error {
	stored, ok := r.movies[movie.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Title = movie.Title
	stored.ReleaseDate = movie.ReleaseDate
	stored.Description = movie.Description
	return nil
}

func (r *stubMovieRepo) SetGenres(_ context.Context, movieID string, genreIDs []string) error {
	r.genres[movieID] = append([]string{}, genreIDs...)
	return nil
}

func (r *stubMovieRepo) Delete(_ context.Context, id, userID string) error {
	m, ok := r.movies[id]
	if !ok || m.AddedByID == nil || *m.AddedByID != userID {
		return pgx.ErrNoRows
	}
	delete(r.movies, id)
	return nil
}

type stubMovieGenreRepo struct{}

func (stubMovieGenreRepo) Create(_ context.Context, genre *domain.MovieGenre) error {
	genre.ID = "genre-" + genre.Name
	return nil
}

func (stubMovieGenreRepo) List(_ context.Context) ([]domain.MovieGenre, error) { return nil, nil }

// stubRatingRepo mirrors the (movie, user) upsert of the ratings table.
type stubRatingRepo struct {
	byPair map[string]int
}

func newStubRatingRepo() *stubRatingRepo {
	return &stubRatingRepo{byPair: make(map[string]int)}
}

func (r *stubRatingRepo) Upsert(_ context.Context, rating *domain.Rating) error {
	rating.ID = "rating-" + rating.MovieID + "/" + rating.UserID
	r.byPair[rating.MovieID+"/"+rating.UserID] = rating.Value
	return nil
}

func (r *stubRatingRepo) average(movieID string) float64 {
	var sum, n float64
	for key, value := range r.byPair {
		if len(key) > len(movieID) && key[:len(movieID)+1] == movieID+"/" {
			sum += float64(value)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

type stubReviewRepo struct {
	reviews []domain.Review
}

func (r *stubReviewRepo) Create(_ context.Context, review *domain.Review) error {
	review.ID = "review-1"
	review.CreatedAt = time.Now()
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *stubReviewRepo) ListByMovie(_ context.Context, movieID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range r.reviews {
		if rv.MovieID == movieID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func newMoviesFixture() (*MoviesService, *stubMovieRepo, *stubRatingRepo) {
	ratings := newStubRatingRepo()
	movies := newStubMovieRepo(ratings)
	svc := NewMoviesService(MoviesDependencies{
		MovieRepo:  movies,
		GenreRepo:  stubMovieGenreRepo{},
		RatingRepo: ratings,
		ReviewRepo: &stubReviewRepo{},
	})
	return svc, movies, ratings
}

func seedMovie(t *testing.T, svc *MoviesService, owner string) *domain.Movie {
	t.Helper()
	movie, err := svc.CreateMovie(context.Background(), owner, MovieCreateInput{
		Title:       "Arrival",
		ReleaseDate: time.Date(2016, 11, 11, 0, 0, 0, 0, time.UTC),
		Description: "first contact",
	})
	if err != nil {
		t.Fatalf("create movie: %v", err)
	}
	return movie
}

func TestNewMovieAveragesToZero(t *testing.T) {
	svc, _, _ := newMoviesFixture()
	movie := seedMovie(t, svc, "user-1")

	got, err := svc.GetMovie(context.Background(), movie.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.AvgRating != 0.0 {
		t.Fatalf("avg rating = %f, want 0.0", got.AvgRating)
	}
}

func TestRateMovieRejectsOutOfRangeValue(t *testing.T) {
	svc, _, _ := newMoviesFixture()
	movie := seedMovie(t, svc, "user-1")

	for _, value := range []int{0, 11} {
		_, err := svc.RateMovie(context.Background(), "user-2", movie.ID, value)
		expectCode(t, err, "VALIDATION_FAILED")
	}
}

func TestRateUnknownMovie(t *testing.T) {
	svc, _, _ := newMoviesFixture()

	_, err := svc.RateMovie(context.Background(), "user-2", "missing", 5)
	expectCode(t, err, "NOT_FOUND")
}

func TestRatingAgainReplacesPreviousScore(t *testing.T) {
	svc, _, ratings := newMoviesFixture()
	movie := seedMovie(t, svc, "user-1")

	if _, err := svc.RateMovie(context.Background(), "user-2", movie.ID, 3); err != nil {
		t.Fatalf("first rating failed: %v", err)
	}
	if _, err := svc.RateMovie(context.Background(), "user-2", movie.ID, 9); err != nil {
		t.Fatalf("second rating failed: %v", err)
	}
	if len(ratings.byPair) != 1 {
		t.Fatalf("stored ratings = %d, want 1", len(ratings.byPair))
	}

	got, err := svc.GetMovie(context.Background(), movie.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.AvgRating != 9.0 {
		t.Fatalf("avg rating = %f, want 9.0", got.AvgRating)
	}
}

func TestAverageAcrossRaters(t *testing.T) {
	svc, _, _ := newMoviesFixture()
	movie := seedMovie(t, svc, "user-1")

	if _, err := svc.RateMovie(context.Background(), "user-2", movie.ID, 6); err != nil {
		t.Fatalf("rating failed: %v", err)
	}
	if _, err := svc.RateMovie(context.Background(), "user-3", movie.ID, 8); err != nil {
		t.Fatalf("rating failed: %v", err)
	}

	got, err := svc.GetMovie(context.Background(), movie.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.AvgRating != 7.0 {
		t.Fatalf("avg rating = %f, want 7.0", got.AvgRating)
	}
}

func TestUpdateMovieKeepsUnsetFields(t *testing.T) {
	svc, _, _ := newMoviesFixture()
	movie := seedMovie(t, svc, "user-1")

	updated, err := svc.UpdateMovie(context.Background(), "user-1", movie.ID, MovieUpdateInput{
		Description: strPtr("aliens arrive"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Description != "aliens arrive" {
		t.Fatalf("description = %q", updated.Description)
	}
	if updated.Title != "Arrival" {
		t.Fatalf("title must keep stored value, got %q", updated.Title)
	}
	if !updated.ReleaseDate.Equal(movie.ReleaseDate) {
		t.Fatal("release date must survive a partial update")
	}
}

func TestUpdateSomeoneElsesMovieReadsAsMissing(t *testing.T) {
	svc, _, _ := newMoviesFixture()
	movie := seedMovie(t, svc, "user-1")

	_, err := svc.UpdateMovie(context.Background(), "user-2", movie.ID, MovieUpdateInput{
		Title: strPtr("Stolen"),
	})
	expectCode(t, err, "NOT_FOUND")
}

func TestUpdateMovieReplacesGenreSet(t *testing.T) {
	svc, movies, _ := newMoviesFixture()
	movie, err := svc.CreateMovie(context.Background(), "user-1", MovieCreateInput{
		Title:       "Arrival",
		ReleaseDate: time.Date(2016, 11, 11, 0, 0, 0, 0, time.UTC),
		GenreIDs:    []string{"genre-scifi", "genre-drama"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	newSet := []string{"genre-scifi"}
	if _, err := svc.UpdateMovie(context.Background(), "user-1", movie.ID, MovieUpdateInput{
		GenreIDs: &newSet,
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := movies.genres[movie.ID]; len(got) != 1 || got[0] != "genre-scifi" {
		t.Fatalf("genres = %v, want [genre-scifi]", got)
	}
}

func TestAddReviewToUnknownMovie(t *testing.T) {
	svc, _, _ := newMoviesFixture()

	_, err := svc.AddReview(context.Background(), "user-1", "missing", "great")
	expectCode(t, err, "NOT_FOUND")
}
