/**
 * @description
 * This file contains the business logic for the like/dislike ledgers.
 * The repository guarantees atomicity of each mutation; this layer owns the
 * operation semantics and derived statistics.
 */
package app

import (
	"context"
	"log/slog"
	"math"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

// ReactionStore defines the database operations the reaction service needs.
// Every mutation is atomic: ledger insert/delete, cross-ledger removal and
// counter refresh happen in one transaction or not at all.
type ReactionStore interface {
	AddLike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error)
	AddDislike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error)
	RemoveLike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error)
	RemoveDislike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error)
	ToggleLike(ctx context.Context, userID, movieID string) (bool, domain.ReactionCounts, error)
	ToggleDislike(ctx context.Context, userID, movieID string) (bool, domain.ReactionCounts, error)
	Status(ctx context.Context, userID, movieID string) (domain.ReactionStatus, error)
	Counts(ctx context.Context, movieID string) (domain.ReactionCounts, error)
}

// ReactionService provides the business logic for movie reactions.
type ReactionService struct {
	store  ReactionStore
	logger *slog.Logger
}

// NewReactionService creates a new reaction service.
func NewReactionService(store ReactionStore, logger *slog.Logger) *ReactionService {
	return &ReactionService{store: store, logger: logger}
}

// Like records a like for the user on the movie, clearing any dislike.
// Returns ErrReactionExists when the user already likes the movie.
func (s *ReactionService) Like(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error) {
	counts, err := s.store.AddLike(ctx, userID, movieID)
	if err != nil {
		return counts, err
	}
	s.logger.Info("movie liked", "user_id", userID, "movie_id", movieID, "likes", counts.Likes)
	return counts, nil
}

// Dislike records a dislike for the user on the movie, clearing any like.
func (s *ReactionService) Dislike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error) {
	counts, err := s.store.AddDislike(ctx, userID, movieID)
	if err != nil {
		return counts, err
	}
	s.logger.Info("movie disliked", "user_id", userID, "movie_id", movieID, "dislikes", counts.Dislikes)
	return counts, nil
}

// Unlike removes the user's like. Returns ErrReactionNotFound when there is none.
func (s *ReactionService) Unlike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error) {
	return s.store.RemoveLike(ctx, userID, movieID)
}

// Undislike removes the user's dislike. Returns ErrReactionNotFound when there is none.
func (s *ReactionService) Undislike(ctx context.Context, userID, movieID string) (domain.ReactionCounts, error) {
	return s.store.RemoveDislike(ctx, userID, movieID)
}

// ToggleLike likes the movie if the user has no like, otherwise removes it.
// Reports whether the movie is liked after the call.
func (s *ReactionService) ToggleLike(ctx context.Context, userID, movieID string) (bool, domain.ReactionCounts, error) {
	return s.store.ToggleLike(ctx, userID, movieID)
}

// ToggleDislike mirrors ToggleLike for dislikes.
func (s *ReactionService) ToggleDislike(ctx context.Context, userID, movieID string) (bool, domain.ReactionCounts, error) {
	return s.store.ToggleDislike(ctx, userID, movieID)
}

// Status reports whether the user has reacted to the movie. Pure read.
func (s *ReactionService) Status(ctx context.Context, userID, movieID string) (domain.ReactionStatus, error) {
	return s.store.Status(ctx, userID, movieID)
}

// EngagementStats summarizes a movie's reactions. Ratios are percentages of
// total engagement rounded to one decimal, and zero when nobody has reacted.
func (s *ReactionService) EngagementStats(ctx context.Context, movieID string) (domain.EngagementStats, error) {
	counts, err := s.store.Counts(ctx, movieID)
	if err != nil {
		return domain.EngagementStats{}, err
	}

	stats := domain.EngagementStats{
		Likes:           counts.Likes,
		Dislikes:        counts.Dislikes,
		TotalEngagement: counts.Likes + counts.Dislikes,
	}
	if stats.TotalEngagement > 0 {
		stats.LikeRatio = roundRatio(float64(counts.Likes) * 100 / float64(stats.TotalEngagement))
		stats.DislikeRatio = roundRatio(float64(counts.Dislikes) * 100 / float64(stats.TotalEngagement))
	}
	return stats, nil
}

func roundRatio(v float64) float64 {
	return math.Round(v*10) / 10
}
