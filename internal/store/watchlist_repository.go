/**
 * @description
 * Data access for user watchlists.
 */
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

// WatchlistRepository handles database operations for watchlist items.
type WatchlistRepository struct {
	db *pgxpool.Pool
}

// NewWatchlistRepository creates a new repository.
func NewWatchlistRepository(db *pgxpool.Pool) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add puts a movie on the user's watchlist. Duplicate adds are a conflict.
func (r *WatchlistRepository) Add(ctx context.Context, userID, movieID string) error {
	query := `INSERT INTO watchlist_items (id, user_id, movie_id) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, uuid.NewString(), userID, movieID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return domain.ErrDuplicate
			case foreignKeyViolation: // movie or user does not exist
				return domain.ErrMovieNotFound
			}
		}
		return dbError(err)
	}
	return nil
}

// Remove takes a movie off the user's watchlist.
func (r *WatchlistRepository) Remove(ctx context.Context, userID, movieID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM watchlist_items WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return dbError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovieNotFound
	}
	return nil
}

// List returns the movies on the user's watchlist, most recently added first.
func (r *WatchlistRepository) List(ctx context.Context, userID string) ([]domain.Movie, error) {
	query := `
        SELECT m.id, m.title, m.genre, m.rating, m.year, m.likes_count, m.dislikes_count, m.created_at
        FROM watchlist_items w
        JOIN movies m ON m.id = w.movie_id
        WHERE w.user_id = $1
        ORDER BY w.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
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
