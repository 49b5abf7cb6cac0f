/**
 * @description
 * Event payloads published to the message broker when a subscription changes
 * state. Consumers (analytics, CRM sync) are external; publishing is
 * best-effort and never fails the originating operation.
 */
package domain

import "time"

// Subscription lifecycle routing keys.
const (
	EventSubscriptionActivated   = "subscription.activated"
	EventSubscriptionExtended    = "subscription.extended"
	EventSubscriptionCancelled   = "subscription.cancelled"
	EventSubscriptionReactivated = "subscription.reactivated"
	EventSubscriptionExpired     = "subscription.expired"
)

// SubscriptionEvent is the payload for all subscription lifecycle events.
type SubscriptionEvent struct {
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	PlanID     string     `json:"plan_id,omitempty"`
	Status     string     `json:"status"`
	Expiration *time.Time `json:"expiration,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
