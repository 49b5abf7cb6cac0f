/**
 * @description
 * Data access for the movie catalog and its comments. Reads only, plus the
 * thin comment insert; reaction counters are maintained by the reaction
 * repository.
 */
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

// MovieRepository handles database operations for movies and comments.
type MovieRepository struct {
	db *pgxpool.Pool
}

// NewMovieRepository creates a new repository.
func NewMovieRepository(db *pgxpool.Pool) *MovieRepository {
	return &MovieRepository{db: db}
}

const movieColumns = `id, title, genre, rating, year, likes_count, dislikes_count, created_at`

func scanMovie(row pgx.Row) (*domain.Movie, error) {
	var m domain.Movie
	err := row.Scan(&m.ID, &m.Title, &m.Genre, &m.Rating, &m.Year,
		&m.LikesCount, &m.DislikesCount, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, dbError(err)
	}
	return &m, nil
}

// GetMovieByID retrieves a single movie.
func (r *MovieRepository) GetMovieByID(ctx context.Context, movieID string) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`
	return scanMovie(r.db.QueryRow(ctx, query, movieID))
}

// ListMovies returns the catalog ordered by creation time.
func (r *MovieRepository) ListMovies(ctx context.Context, limit int) ([]domain.Movie, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var movies []domain.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}
	return movies, dbError(rows.Err())
}

// CreateMovie inserts a catalog entry.
func (r *MovieRepository) CreateMovie(ctx context.Context, m *domain.Movie) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	query := `
        INSERT INTO movies (id, title, genre, rating, year)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query, m.ID, m.Title, m.Genre, m.Rating, m.Year)
	return dbError(err)
}

// AddComment inserts a comment for a movie.
func (r *MovieRepository) AddComment(ctx context.Context, c *domain.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `INSERT INTO comments (id, user_id, movie_id, body) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, c.ID, c.UserID, c.MovieID, c.Body)
	return dbError(err)
}

// ListComments returns comments for a movie, newest first, with usernames joined in.
func (r *MovieRepository) ListComments(ctx context.Context, movieID string) ([]domain.Comment, error) {
	query := `
        SELECT c.id, c.user_id, u.username, c.movie_id, c.body, c.created_at
        FROM comments c
        JOIN users u ON u.id = c.user_id
        WHERE c.movie_id = $1
        ORDER BY c.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, movieID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.Username, &c.MovieID, &c.Body, &c.CreatedAt); err != nil {
			return nil, dbError(err)
		}
		comments = append(comments, c)
	}
	return comments, dbError(rows.Err())
}
