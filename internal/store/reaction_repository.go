/**
 * @description
 * This file implements the data access layer for the like/dislike ledgers.
 * Every mutation runs in a single transaction that locks the movie row first,
 * so concurrent reactions on the same movie serialize on that lock. Counters
 * on the movie record are recomputed from ledger cardinality inside the same
 * transaction, which keeps them exact and can never drive them negative.
 */
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

// ReactionRepository handles database operations for likes and dislikes.
type ReactionRepository struct {
	db *pgxpool.Pool
}

// NewReactionRepository creates a new repository.
func NewReactionRepository(db *pgxpool.Pool) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// withMovieTx runs fn inside a transaction holding a row lock on the movie,
// then refreshes the movie's denormalized counters from the ledgers before
// committing. Returns the refreshed counters.
func (r *ReactionRepository) withMovieTx(ctx context.Context, movieID string, fn func(tx pgx.Tx) error) (domain.ReactionCounts, error) {
	var counts domain.ReactionCounts

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return counts, dbError(err)
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `SELECT id FROM movies WHERE id = $1 FOR UPDATE`, movieID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return counts, domain.ErrMovieNotFound
		}
		return counts, dbError(err)
	}

	if err := fn(tx); err != nil {
		return counts, err
	}

	err = tx.QueryRow(ctx, `
        UPDATE movies
        SET likes_count = (SELECT COUNT(*) FROM likes WHERE movie_id = $1),
            dislikes_count = (SELECT COUNT(*) FROM dislikes WHERE movie_id = $1)
        WHERE id = $1
        RETURNING likes_count, dislikes_count
    `, movieID).Scan(&counts.Likes, &counts.Dislikes)
	if err != nil {
		return counts, dbError(err)
	}

	return counts, dbError(tx.Commit(ctx))
}

func insertReaction(ctx context.Context, tx pgx.Tx, table, userID, movieID string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO `+table+` (id, user_id, movie_id) VALUES ($1, $2, $3)`,
		uuid.NewString(), userID, movieID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrReactionExists
		}
		return dbError(err)
	}
	return nil
}

func deleteReaction(ctx context.Context, tx pgx.Tx, table, userID, movieID string) (bool, error) {
	tag, err := tx.Exec(ctx,
		`DELETE FROM `+table+` WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID,
	)
	if err != nil {
		return false, dbError(err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddLike records a like and removes any opposing dislike atomically.
func (r *ReactionRepository) AddLike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error) {
	return r.withMovieTx(ctx, movieID, func(tx pgx.Tx) error {
		if err := insertReaction(ctx, tx, "likes", userID, movieID); err != nil {
			return err
		}
		_, err := deleteReaction(ctx, tx, "dislikes", userID, movieID)
		return err
	})
}

// AddDislike records a dislike and removes any opposing like atomically.
func (r *ReactionRepository) AddDislike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error) {
	return r.withMovieTx(ctx, movieID, func(tx pgx.Tx) error {
		if err := insertReaction(ctx, tx, "dislikes", userID, movieID); err != nil {
			return err
		}
		_, err := deleteReaction(ctx, tx, "likes", userID, movieID)
		return err
	})
}

// RemoveLike deletes a like. Returns ErrReactionNotFound when there is none.
func (r *ReactionRepository) RemoveLike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error) {
	return r.withMovieTx(ctx, movieID, func(tx pgx.Tx) error {
		removed, err := deleteReaction(ctx, tx, "likes", userID, movieID)
		if err != nil {
			return err
		}
		if !removed {
			return domain.ErrReactionNotFound
		}
		return nil
	})
}

// RemoveDislike deletes a dislike. Returns ErrReactionNotFound when there is none.
func (r *ReactionRepository) RemoveDislike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error) {
	return r.withMovieTx(ctx, movieID, func(tx pgx.Tx) error {
		removed, err := deleteReaction(ctx, tx, "dislikes", userID, movieID)
		if err != nil {
			return err
		}
		if !removed {
			return domain.ErrReactionNotFound
		}
		return nil
	})
}

// ToggleLike removes an existing like, or inserts one (clearing any dislike)
// when absent. The movie row lock makes the read-decide-write cycle atomic
// with respect to concurrent reactions from the same or other users.
func (r *ReactionRepository) ToggleLike(ctx context.Context, userID, movieID string) (bool, domain.ReactionCounts, error) {
	var liked bool
	counts, err := r.withMovieTx(ctx, movieID, func(tx pgx.Tx) error {
		removed, err := deleteReaction(ctx, tx, "likes", userID, movieID)
		if err != nil {
			return err
		}
		if removed {
			liked = false
			return nil
		}
		if err := insertReaction(ctx, tx, "likes", userID, movieID); err != nil {
			return err
		}
		if _, err := deleteReaction(ctx, tx, "dislikes", userID, movieID); err != nil {
			return err
		}
		liked = true
		return nil
	})
	return liked, counts, err
}

// ToggleDislike mirrors ToggleLike for the dislikes ledger.
func (r *ReactionRepository) ToggleDislike(ctx context.Context, userID, movieID string) (bool, domain.ReactionCounts, error) {
	var disliked bool
	counts, err := r.withMovieTx(ctx, movieID, func(tx pgx.Tx) error {
		removed, err := deleteReaction(ctx, tx, "dislikes", userID, movieID)
		if err != nil {
			return err
		}
		if removed {
			disliked = false
			return nil
		}
		if err := insertReaction(ctx, tx, "dislikes", userID, movieID); err != nil {
			return err
		}
		if _, err := deleteReaction(ctx, tx, "likes", userID, movieID); err != nil {
			return err
		}
		disliked = true
		return nil
	})
	return disliked, counts, err
}

// Status reports whether the user has a like or dislike on the movie.
func (r *ReactionRepository) Status(ctx context.Context, userID, movieID string) (domain.ReactionStatus, error) {
	var status domain.ReactionStatus
	err := r.db.QueryRow(ctx, `
        SELECT
            EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND movie_id = $2),
            EXISTS (SELECT 1 FROM dislikes WHERE user_id = $1 AND movie_id = $2)
    `, userID, movieID).Scan(&status.Liked, &status.Disliked)
	return status, dbError(err)
}

// Counts returns ledger cardinality for a movie. Used for engagement stats so
// the numbers are authoritative even if the cached counters drift. Unknown
// movies are an error, not an empty result.
func (r *ReactionRepository) Counts(ctx context.Context, movieID string) (domain.ReactionCounts, error) {
	var exists bool
	var counts domain.ReactionCounts
	err := r.db.QueryRow(ctx, `
        SELECT
            EXISTS (SELECT 1 FROM movies WHERE id = $1),
            (SELECT COUNT(*) FROM likes WHERE movie_id = $1),
            (SELECT COUNT(*) FROM dislikes WHERE movie_id = $1)
    `, movieID).Scan(&exists, &counts.Likes, &counts.Dislikes)
	if err != nil {
		return counts, dbError(err)
	}
	if !exists {
		return domain.ReactionCounts{}, domain.ErrMovieNotFound
	}
	return counts, nil
}
