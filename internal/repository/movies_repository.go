package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// MovieFilter captures catalog listing parameters.
type MovieFilter struct {
	GenreID     *string
	MinRating   *float64
	ReleaseYear *int
	SearchTerm  *string
}

// MovieRepository encapsulates movie persistence. avg_rating is computed per
// query from ratings and defaults to 0 for unrated movies.
type MovieRepository interface {
	Create(ctx context.Context, movie *domain.Movie, genreIDs []string) error
	List(ctx context.Context, filter MovieFilter) ([]domain.Movie, error)
	GetByID(ctx context.Context, id string) (*domain.Movie, error)
	GetForOwner(ctx context.Context, id, userID string) (*domain.Movie, error)
	Update(ctx context.Context, movie *domain.Movie) error
	SetGenres(ctx context.Context, movieID string, genreIDs []string) error
	Delete(ctx context.Context, id, userID string) error
}

// MovieGenreRepository persists movie genres.
type MovieGenreRepository interface {
	Create(ctx context.Context, genre *domain.MovieGenre) error
	List(ctx context.Context) ([]domain.MovieGenre, error)
}

// RatingRepository persists per-user movie ratings, unique per (movie, user).
type RatingRepository interface {
	// Upsert replaces the user's previous rating for the movie, if any.
	Upsert(ctx context.Context, rating *domain.Rating) error
}

// ReviewRepository persists movie reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error)
}

const movieColumns = `
        m.id, m.title, m.release_date, m.description, m.added_by,
        COALESCE((SELECT AVG(r.value) FROM ratings r WHERE r.movie_id = m.id), 0)::float8 AS avg_rating`

type movieRepository struct {
	pool *pgxpool.Pool
}

// NewMovieRepository instantiates repository.
func NewMovieRepository(pool *pgxpool.Pool) MovieRepository {
	return &movieRepository{pool: pool}
}

func (r *movieRepository) Create(ctx context.Context, movie *domain.Movie, genreIDs []string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO movies (title, release_date, description, added_by)
            VALUES ($1,$2,$3,$4)
            RETURNING id`
		if err := tx.QueryRow(ctx, query,
			movie.Title, movie.ReleaseDate, movie.Description, movie.AddedByID,
		).Scan(&movie.ID); err != nil {
			return err
		}
		return setAssociations(ctx, tx, "movie_genres", "movie_id", "genre_id", movie.ID, genreIDs)
	})
}

func (r *movieRepository) List(ctx context.Context, filter MovieFilter) ([]domain.Movie, error) {
	base := `SELECT ` + movieColumns + ` FROM movies m`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.GenreID != nil {
		args = append(args, *filter.GenreID)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM movie_genres mg WHERE mg.movie_id = m.id AND mg.genre_id=$%d)", len(args)))
	}
	if filter.ReleaseYear != nil {
		args = append(args, *filter.ReleaseYear)
		clauses = append(clauses, fmt.Sprintf("EXTRACT(YEAR FROM m.release_date)=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.SearchTerm)+"%")
		clauses = append(clauses, fmt.Sprintf("m.title ILIKE $%d", len(args)))
	}
	if filter.MinRating != nil {
		args = append(args, *filter.MinRating)
		clauses = append(clauses, fmt.Sprintf(
			"COALESCE((SELECT AVG(r.value) FROM ratings r WHERE r.movie_id = m.id), 0) >= $%d", len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY avg_rating DESC, m.title", base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []domain.Movie
	for rows.Next() {
		var m domain.Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range movies {
		genres, err := r.genresForMovie(ctx, movies[i].ID)
		if err != nil {
			return nil, err
		}
		movies[i].Genres = genres
	}
	return movies, nil
}

func (r *movieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies m WHERE m.id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *movieRepository) GetForOwner(ctx context.Context, id, userID string) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies m WHERE m.id=$1 AND m.added_by=$2`
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *movieRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Movie, error) {
	var m domain.Movie
	if err := scanMovie(r.pool.QueryRow(ctx, query, args...), &m); err != nil {
		return nil, err
	}
	genres, err := r.genresForMovie(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.Genres = genres
	return &m, nil
}

func scanMovie(row pgx.Row, m *domain.Movie) error {
	return row.Scan(&m.ID, &m.Title, &m.ReleaseDate, &m.Description, &m.AddedByID, &m.AvgRating)
}

func (r *movieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	const query = `
        UPDATE movies SET title=$1, release_date=$2, description=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, movie.Title, movie.ReleaseDate, movie.Description, movie.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *movieRepository) SetGenres(ctx context.Context, movieID string, genreIDs []string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return setAssociations(ctx, tx, "movie_genres", "movie_id", "genre_id", movieID, genreIDs)
	})
}

func (r *movieRepository) Delete(ctx context.Context, id, userID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id=$1 AND added_by=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *movieRepository) genresForMovie(ctx context.Context, movieID string) ([]domain.MovieGenre, error) {
	const query = `
        SELECT g.id, g.name
        FROM movie_genres mg
        JOIN movie_genre_catalog g ON g.id = mg.genre_id
        WHERE mg.movie_id=$1 ORDER BY g.name`
	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []domain.MovieGenre
	for rows.Next() {
		var g domain.MovieGenre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

type movieGenreRepository struct {
	pool *pgxpool.Pool
}

// NewMovieGenreRepository instantiates repository.
func NewMovieGenreRepository(pool *pgxpool.Pool) MovieGenreRepository {
	return &movieGenreRepository{pool: pool}
}

func (r *movieGenreRepository) Create(ctx context.Context, genre *domain.MovieGenre) error {
	const query = `INSERT INTO movie_genre_catalog (name) VALUES ($1) RETURNING id`
	return r.pool.QueryRow(ctx, query, genre.Name).Scan(&genre.ID)
}

func (r *movieGenreRepository) List(ctx context.Context) ([]domain.MovieGenre, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM movie_genre_catalog ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []domain.MovieGenre
	for rows.Next() {
		var g domain.MovieGenre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository instantiates repository.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	const query = `
        INSERT INTO ratings (movie_id, user_id, value)
        VALUES ($1,$2,$3)
        ON CONFLICT (movie_id, user_id) DO UPDATE SET value = EXCLUDED.value
        RETURNING id`
	return r.pool.QueryRow(ctx, query, rating.MovieID, rating.UserID, rating.Value).
		Scan(&rating.ID)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository instantiates repository.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO reviews (movie_id, user_id, text)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, review.MovieID, review.UserID, review.Text).
		Scan(&review.ID, &review.CreatedAt)
}

func (r *reviewRepository) ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	const query = `
        SELECT id, movie_id, user_id, text, created_at
        FROM reviews WHERE movie_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.MovieID, &rv.UserID, &rv.Text, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
