/**
 * @description
 * This file implements the data access layer for users and their subscription
 * state. It contains all the SQL queries and logic for interacting with the
 * users table, including the bulk expiration sweep used by the scheduler.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new repository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
    id, email, username, password_hash, preferred_genre,
    subscription_status, subscription_type, subscription_start_date,
    subscription_expiration_date, subscription_active,
    last_extended_date, cancellation_date, cancellation_reason,
    reactivation_date, last_reminder_sent, created_at
`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.PreferredGenre,
		&u.SubscriptionStatus, &u.SubscriptionType, &u.SubscriptionStart,
		&u.SubscriptionEnd, &u.SubscriptionActive,
		&u.LastExtendedDate, &u.CancellationDate, &u.CancellationReason,
		&u.ReactivationDate, &u.LastReminderSent, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, dbError(err)
	}
	return &u, nil
}

// CreateUser inserts a new user. Email and username collisions surface as a
// conflict error.
func (r *UserRepository) CreateUser(ctx context.Context, u *domain.User) error {
	query := `
        INSERT INTO users (id, email, username, password_hash, subscription_status)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query, u.ID, u.Email, u.Username, u.PasswordHash, domain.StatusFree)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("email or username taken: %w", domain.ErrDuplicate)
		}
		return dbError(err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, userID))
}

// GetUserByEmail retrieves a user by email, for login.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// SaveSubscription persists the subscription and audit fields of a user after
// a state transition. The service layer owns the transition logic; this only
// writes the result.
func (r *UserRepository) SaveSubscription(ctx context.Context, u *domain.User) error {
	query := `
        UPDATE users
        SET subscription_status = $1,
            subscription_type = $2,
            subscription_start_date = $3,
            subscription_expiration_date = $4,
            subscription_active = $5,
            last_extended_date = $6,
            cancellation_date = $7,
            cancellation_reason = $8,
            reactivation_date = $9
        WHERE id = $10
    `
	tag, err := r.db.Exec(ctx, query,
		u.SubscriptionStatus, u.SubscriptionType, u.SubscriptionStart,
		u.SubscriptionEnd, u.SubscriptionActive,
		u.LastExtendedDate, u.CancellationDate, u.CancellationReason,
		u.ReactivationDate, u.ID,
	)
	if err != nil {
		return dbError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetPreferredGenre updates the user's preferred genre.
func (r *UserRepository) SetPreferredGenre(ctx context.Context, userID, genre string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET preferred_genre = $1 WHERE id = $2`, genre, userID)
	if err != nil {
		return dbError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SweepExpired flips every user whose premium subscription has lapsed back to
// the free tier in a single statement. The write predicate is exactly the read
// set, so re-running the sweep immediately returns nothing.
func (r *UserRepository) SweepExpired(ctx context.Context, now time.Time) ([]domain.ExpiredUser, error) {
	query := `
        UPDATE users
        SET subscription_status = 'Free',
            subscription_active = FALSE
        WHERE subscription_active = TRUE
          AND subscription_expiration_date < $1
        RETURNING id, email, username, subscription_expiration_date
    `
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var expired []domain.ExpiredUser
	for rows.Next() {
		var u domain.ExpiredUser
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.ExpiredAt); err != nil {
			return nil, dbError(err)
		}
		expired = append(expired, u)
	}
	return expired, dbError(rows.Err())
}

// GetUsersNeedingReminder finds active subscribers whose subscription expires
// within the warning window and who have not been reminded inside the
// cooldown period.
func (r *UserRepository) GetUsersNeedingReminder(ctx context.Context, now time.Time, window, cooldown time.Duration) ([]domain.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE subscription_active = TRUE
          AND subscription_expiration_date >= $1
          AND subscription_expiration_date <= $2
          AND (last_reminder_sent IS NULL OR last_reminder_sent < $3)
    `
	rows, err := r.db.Query(ctx, query, now, now.Add(window), now.Add(-cooldown))
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, dbError(rows.Err())
}

// MarkReminderSent stamps the reminder cooldown for a user.
func (r *UserRepository) MarkReminderSent(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_reminder_sent = $1 WHERE id = $2`, at, userID)
	return dbError(err)
}

// SubscriptionStats aggregates subscription state across all users.
func (r *UserRepository) SubscriptionStats(ctx context.Context, now time.Time, warningWindow time.Duration) (*domain.SubscriptionStats, error) {
	stats := &domain.SubscriptionStats{
		ByStatus:     map[string]int{},
		ActiveByPlan: map[string]int{},
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, dbError(err)
	}

	rows, err := r.db.Query(ctx, `SELECT subscription_status, COUNT(*) FROM users GROUP BY subscription_status`)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.ByStatus[status] += n
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}

	planRows, err := r.db.Query(ctx, `
        SELECT subscription_type, COUNT(*)
        FROM users
        WHERE subscription_active = TRUE AND subscription_type IS NOT NULL
        GROUP BY subscription_type
    `)
	if err != nil {
		return nil, dbError(err)
	}
	defer planRows.Close()
	for planRows.Next() {
		var plan string
		var n int
		if err := planRows.Scan(&plan, &n); err != nil {
			return nil, err
		}
		stats.ActiveByPlan[plan] = n
	}
	if err := planRows.Err(); err != nil {
		return nil, dbError(err)
	}

	err = r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM users
        WHERE subscription_active = TRUE
          AND subscription_expiration_date >= $1
          AND subscription_expiration_date <= $2
    `, now, now.Add(warningWindow)).Scan(&stats.ExpiringSoon)
	if err != nil {
		return nil, dbError(err)
	}

	err = r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM users
        WHERE subscription_active = TRUE
          AND subscription_expiration_date < $1
    `, now).Scan(&stats.NeedsCleanup)
	if err != nil {
		return nil, dbError(err)
	}

	return stats, nil
}
