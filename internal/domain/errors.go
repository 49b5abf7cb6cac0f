/**
 * @description
 * Sentinel errors shared across the service and store layers.
 * The HTTP layer maps these to status codes; everything else checks
 * them with errors.Is.
 */
package domain

import "errors"

var (
	// ErrUserNotFound is returned when no user exists for the given ID.
	ErrUserNotFound = errors.New("user not found")
	// ErrMovieNotFound is returned when no movie exists for the given ID.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrReactionNotFound is returned when removing a like or dislike that does not exist.
	ErrReactionNotFound = errors.New("reaction not found")
	// ErrReactionExists is returned when a user already has the requested reaction on a movie.
	ErrReactionExists = errors.New("reaction already exists")
	// ErrDuplicate is returned when a unique field such as email or username is taken.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidPlan is returned when a subscription plan ID is not in the catalog.
	ErrInvalidPlan = errors.New("invalid subscription plan")
	// ErrValidation is returned for malformed input such as an unparsable ID.
	ErrValidation = errors.New("invalid input")
	// ErrTransient is returned when the database or a downstream collaborator is
	// temporarily unreachable. Callers may retry.
	ErrTransient = errors.New("temporarily unavailable")
)
