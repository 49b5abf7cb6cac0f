/**
 * @description
 * This file defines the core domain models for users and their subscription
 * state. The subscription fields form a small state machine: a user is either
 * on the free tier or holds a premium subscription with an expiration date.
 * The audit fields (cancellation, reactivation, reminders) are nullable and
 * only set by the corresponding lifecycle transitions.
 */
package domain

import "time"

// Subscription statuses.
const (
	StatusFree    = "Free"
	StatusPremium = "Premium"
)

// User represents a registered Flixxit user.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	PasswordHash   string `json:"-"`
	PreferredGenre string `json:"preferred_genre,omitempty"`

	SubscriptionStatus string     `json:"subscription_status"` // 'Free' or 'Premium'
	SubscriptionType   *string    `json:"subscription_type,omitempty"`
	SubscriptionStart  *time.Time `json:"subscription_start_date,omitempty"`
	SubscriptionEnd    *time.Time `json:"subscription_expiration_date,omitempty"`
	SubscriptionActive bool       `json:"subscription_active"`

	LastExtendedDate   *time.Time `json:"last_extended_date,omitempty"`
	CancellationDate   *time.Time `json:"cancellation_date,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	ReactivationDate   *time.Time `json:"reactivation_date,omitempty"`
	LastReminderSent   *time.Time `json:"last_reminder_sent,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionHistory is the audit-trail view of a user's subscription,
// returned verbatim with status defaults applied.
type SubscriptionHistory struct {
	Status             string     `json:"status"`
	Type               *string    `json:"type,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
	Active             bool       `json:"active"`
	LastExtendedDate   *time.Time `json:"last_extended_date,omitempty"`
	CancellationDate   *time.Time `json:"cancellation_date,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	ReactivationDate   *time.Time `json:"reactivation_date,omitempty"`
}

// ExpiredUser identifies a user whose subscription was flipped by a sweep,
// carrying just enough for downstream notification.
type ExpiredUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	ExpiredAt time.Time `json:"expired_at"` // the prior expiration date
}

// SubscriptionStats is the aggregate view across all users.
type SubscriptionStats struct {
	TotalUsers       int            `json:"total_users"`
	ByStatus         map[string]int `json:"by_status"`  // 'Free' / 'Premium'
	ActiveByPlan     map[string]int `json:"by_plan"`    // active premium users per plan
	ExpiringSoon     int            `json:"expiring_soon"`
	NeedsCleanup     int            `json:"needs_cleanup"`
	EstimatedRevenue int            `json:"estimated_revenue"`
}
