/**
 * @description
 * This file contains the subscription state machine. A user is either on the
 * free tier or holds a premium subscription with an expiration date; the
 * operations here are the only code that moves users between those states on
 * the request path. The expiration sweep in jobs.go is the only other writer.
 *
 * The central scheduling policy: extending a still-valid subscription stacks
 * the new period on top of the current expiration, while extending a lapsed
 * (or absent) one starts a fresh period from now.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

// UserStore defines the database operations the subscription service needs.
type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	SaveSubscription(ctx context.Context, u *domain.User) error
	SetPreferredGenre(ctx context.Context, userID, genre string) error
	SubscriptionStats(ctx context.Context, now time.Time, warningWindow time.Duration) (*domain.SubscriptionStats, error)
}

// EventPublisher publishes subscription lifecycle events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// SubscriptionExchange is the topic exchange lifecycle events are published to.
const SubscriptionExchange = "flixxit.subscriptions"

// SubscriptionService provides the business logic for the subscription lifecycle.
type SubscriptionService struct {
	store         UserStore
	plans         domain.PlanCatalog
	events        EventPublisher
	logger        *slog.Logger
	warningWindow time.Duration
	now           func() time.Time
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(store UserStore, plans domain.PlanCatalog, events EventPublisher, logger *slog.Logger, warningWindow time.Duration) *SubscriptionService {
	return &SubscriptionService{
		store:         store,
		plans:         plans,
		events:        events,
		logger:        logger,
		warningWindow: warningWindow,
		now:           time.Now,
	}
}

// publish sends a lifecycle event. Publishing is best-effort: a broker outage
// must never fail the user-facing operation.
func (s *SubscriptionService) publish(ctx context.Context, routingKey string, u *domain.User, planID string) {
	if s.events == nil {
		return
	}
	event := domain.SubscriptionEvent{
		UserID:     u.ID,
		Email:      u.Email,
		PlanID:     planID,
		Status:     u.SubscriptionStatus,
		Expiration: u.SubscriptionEnd,
		OccurredAt: s.now(),
	}
	if err := s.events.Publish(ctx, SubscriptionExchange, routingKey, event); err != nil {
		s.logger.Error("failed to publish subscription event", "routing_key", routingKey, "user_id", u.ID, "error", err)
	}
}

// Subscribe activates a premium subscription starting now. Valid from the free
// tier or from an already-lapsed premium subscription.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID string) (*domain.User, error) {
	plan, err := s.plans.Lookup(planID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	end := now.AddDate(0, 0, plan.Days)
	user.SubscriptionStatus = domain.StatusPremium
	user.SubscriptionType = &plan.ID
	user.SubscriptionStart = &now
	user.SubscriptionEnd = &end
	user.SubscriptionActive = true

	if err := s.store.SaveSubscription(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("subscription activated", "user_id", userID, "plan", planID, "expires", end)
	s.publish(ctx, domain.EventSubscriptionActivated, user, planID)
	return user, nil
}

// Extend adds a plan's duration to the subscription. A still-valid
// subscription stacks from its current expiration; a lapsed or absent one
// restarts fresh from now (and takes the plan as its type, like a new
// subscribe would).
func (s *SubscriptionService) Extend(ctx context.Context, userID, planID string) (*domain.User, error) {
	return s.extendFrom(ctx, userID, planID, false)
}

// UpdatePlan applies the same additive-or-fresh expiration policy as Extend,
// and additionally switches the subscription type to the new plan.
func (s *SubscriptionService) UpdatePlan(ctx context.Context, userID, planID string) (*domain.User, error) {
	return s.extendFrom(ctx, userID, planID, true)
}

func (s *SubscriptionService) extendFrom(ctx context.Context, userID, planID string, changeType bool) (*domain.User, error) {
	plan, err := s.plans.Lookup(planID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var end time.Time
	if user.SubscriptionEnd != nil && user.SubscriptionEnd.After(now) {
		// Additive extension: stack on top of the unexpired period.
		end = user.SubscriptionEnd.AddDate(0, 0, plan.Days)
	} else {
		// Lapsed or never subscribed: fresh period from now.
		end = now.AddDate(0, 0, plan.Days)
		user.SubscriptionStart = &now
		user.SubscriptionType = &plan.ID
	}
	if changeType {
		user.SubscriptionType = &plan.ID
	}
	user.SubscriptionStatus = domain.StatusPremium
	user.SubscriptionEnd = &end
	user.SubscriptionActive = true
	user.LastExtendedDate = &now

	if err := s.store.SaveSubscription(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("subscription extended", "user_id", userID, "plan", planID, "expires", end)
	s.publish(ctx, domain.EventSubscriptionExtended, user, planID)
	return user, nil
}

// Cancel drops the user back to the free tier and records the audit fields.
// Cancelling an already-free user succeeds and re-stamps the audit trail.
func (s *SubscriptionService) Cancel(ctx context.Context, userID, reason string) (*domain.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user.SubscriptionStatus = domain.StatusFree
	user.SubscriptionActive = false
	user.CancellationDate = &now
	user.CancellationReason = &reason

	if err := s.store.SaveSubscription(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("subscription cancelled", "user_id", userID, "reason", reason)
	s.publish(ctx, domain.EventSubscriptionCancelled, user, "")
	return user, nil
}

// Reactivate starts a fresh premium period from now, never additive, and
// clears the cancellation audit fields.
func (s *SubscriptionService) Reactivate(ctx context.Context, userID, planID string) (*domain.User, error) {
	plan, err := s.plans.Lookup(planID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	end := now.AddDate(0, 0, plan.Days)
	user.SubscriptionStatus = domain.StatusPremium
	user.SubscriptionType = &plan.ID
	user.SubscriptionStart = &now
	user.SubscriptionEnd = &end
	user.SubscriptionActive = true
	user.CancellationDate = nil
	user.CancellationReason = nil
	user.ReactivationDate = &now

	if err := s.store.SaveSubscription(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("subscription reactivated", "user_id", userID, "plan", planID, "expires", end)
	s.publish(ctx, domain.EventSubscriptionReactivated, user, planID)
	return user, nil
}

// SetPreferredGenre stores the user's preferred genre. Not part of the state
// machine, just a profile field.
func (s *SubscriptionService) SetPreferredGenre(ctx context.Context, userID, genre string) error {
	return s.store.SetPreferredGenre(ctx, userID, genre)
}

// Stats aggregates subscription state across all users and estimates revenue
// from the active subscriber count per plan.
func (s *SubscriptionService) Stats(ctx context.Context) (*domain.SubscriptionStats, error) {
	stats, err := s.store.SubscriptionStats(ctx, s.now(), s.warningWindow)
	if err != nil {
		return nil, err
	}
	revenue := 0
	for planID, n := range stats.ActiveByPlan {
		if plan, ok := s.plans[planID]; ok {
			revenue += n * plan.Cost
		}
	}
	stats.EstimatedRevenue = revenue
	return stats, nil
}

// History returns the subscription audit trail for a user.
func (s *SubscriptionService) History(ctx context.Context, userID string) (*domain.SubscriptionHistory, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	status := user.SubscriptionStatus
	if status == "" {
		status = domain.StatusFree
	}
	return &domain.SubscriptionHistory{
		Status:             status,
		Type:               user.SubscriptionType,
		StartDate:          user.SubscriptionStart,
		ExpirationDate:     user.SubscriptionEnd,
		Active:             user.SubscriptionActive,
		LastExtendedDate:   user.LastExtendedDate,
		CancellationDate:   user.CancellationDate,
		CancellationReason: user.CancellationReason,
		ReactivationDate:   user.ReactivationDate,
	}, nil
}
