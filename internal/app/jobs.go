/**
 * @description
 * Scheduled job implementations for subscription reconciliation. Three
 * cadences share this logic: a frequent health sweep (expiration flip only),
 * a daily sweep (flip + expiry notices + renewal reminders), and a weekly
 * admin summary.
 *
 * A sweep retries on store failure with exponential backoff up to a bounded
 * attempt count, then logs and leaves the work for the next tick. Per-user
 * notification failures are isolated: logged, counted, never abort the sweep.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
	"github.com/Susan56789/flixxit-sub000/internal/notify"
)

// SweepStore defines the database operations needed by the jobs.
type SweepStore interface {
	SweepExpired(ctx context.Context, now time.Time) ([]domain.ExpiredUser, error)
	GetUsersNeedingReminder(ctx context.Context, now time.Time, window, cooldown time.Duration) ([]domain.User, error)
	MarkReminderSent(ctx context.Context, userID string, at time.Time) error
}

// StatsProvider supplies the aggregate view for the weekly summary.
type StatsProvider interface {
	Stats(ctx context.Context) (*domain.SubscriptionStats, error)
}

// Notifier delivers templated notifications.
type Notifier interface {
	Send(ctx context.Context, templateID string, recipient notify.Recipient) error
	SendBatch(ctx context.Context, templateID string, recipients []notify.Recipient) notify.BatchResult
}

// JobsConfig carries the reconciliation policy knobs.
type JobsConfig struct {
	WarningWindow    time.Duration // how far ahead to warn (default 7 days)
	ReminderCooldown time.Duration // minimum gap between reminders per user (default 24h)
	MaxRetries       int           // bounded retry count for a failing sweep
	AdminEmail       string        // weekly summary recipient
	TickTimeout      time.Duration // upper bound on one job run
}

// Jobs contains the logic for all scheduled reconciliation tasks.
type Jobs struct {
	store    SweepStore
	stats    StatsProvider
	notifier Notifier
	events   EventPublisher
	logger   *slog.Logger
	config   JobsConfig
	now      func() time.Time
}

// NewJobs creates a new jobs runner.
func NewJobs(store SweepStore, stats StatsProvider, notifier Notifier, events EventPublisher, logger *slog.Logger, cfg JobsConfig) *Jobs {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.TickTimeout <= 0 {
		cfg.TickTimeout = 2 * time.Minute
	}
	return &Jobs{
		store:    store,
		stats:    stats,
		notifier: notifier,
		events:   events,
		logger:   logger,
		config:   cfg,
		now:      time.Now,
	}
}

func (j *Jobs) tickContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), j.config.TickTimeout)
}

// sweepExpired flips lapsed subscriptions with bounded retry on store failure.
func (j *Jobs) sweepExpired(ctx context.Context) ([]domain.ExpiredUser, error) {
	var expired []domain.ExpiredUser
	backoff := retry.WithMaxRetries(uint64(j.config.MaxRetries), retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var sweepErr error
		expired, sweepErr = j.store.SweepExpired(ctx, j.now())
		if sweepErr != nil {
			j.logger.Warn("expiration sweep attempt failed, will retry", "error", sweepErr)
			return retry.RetryableError(sweepErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expiration sweep exhausted retries: %w", err)
	}
	return expired, nil
}

// RunHealthSweep is the frequent cadence: flip expired subscriptions so the
// active flag never lags the expiration date for long. No notifications.
func (j *Jobs) RunHealthSweep() {
	ctx, cancel := j.tickContext()
	defer cancel()

	expired, err := j.sweepExpired(ctx)
	if err != nil {
		j.logger.Error("health sweep failed", "error", err)
		return
	}
	if len(expired) > 0 {
		j.logger.Info("health sweep flipped expired subscriptions", "count", len(expired))
	}
}

// RunDailySweep is the daily cadence: flip expired subscriptions, notify the
// affected users, and send renewal reminders to soon-to-expire subscribers.
func (j *Jobs) RunDailySweep() {
	j.logger.Info("starting daily subscription sweep")
	ctx, cancel := j.tickContext()
	defer cancel()

	expired, err := j.sweepExpired(ctx)
	if err != nil {
		j.logger.Error("daily sweep failed", "error", err)
		return
	}

	var result notify.BatchResult
	if len(expired) > 0 {
		recipients := make([]notify.Recipient, 0, len(expired))
		for _, user := range expired {
			recipients = append(recipients, notify.Recipient{
				To: user.Email,
				Data: map[string]string{
					"username":       user.Username,
					"expirationDate": user.ExpiredAt.Format("January 2, 2006"),
				},
			})
		}
		result = j.notifier.SendBatch(ctx, notify.TemplateSubscriptionExpired, recipients)
	}

	// The subscriptions were already flipped, so expiry events go out
	// regardless of how the notices fared.
	if j.events != nil {
		for _, user := range expired {
			event := domain.SubscriptionEvent{
				UserID:     user.ID,
				Email:      user.Email,
				Status:     domain.StatusFree,
				OccurredAt: j.now(),
			}
			if err := j.events.Publish(ctx, SubscriptionExchange, domain.EventSubscriptionExpired, event); err != nil {
				j.logger.Error("failed to publish expiry event", "user_id", user.ID, "error", err)
			}
		}
	}

	j.logger.Info("daily sweep finished",
		"expired", len(expired), "notified", result.Sent, "notify_failed", result.Failed)

	j.sendReminders(ctx)
}

// sendReminders warns active subscribers whose subscription expires within the
// warning window, honoring the per-user cooldown.
func (j *Jobs) sendReminders(ctx context.Context) {
	now := j.now()
	users, err := j.store.GetUsersNeedingReminder(ctx, now, j.config.WarningWindow, j.config.ReminderCooldown)
	if err != nil {
		j.logger.Error("failed to query users needing reminders", "error", err)
		return
	}
	if len(users) == 0 {
		return
	}

	var sent, failed int
	for _, user := range users {
		daysLeft := 0
		if user.SubscriptionEnd != nil {
			daysLeft = int(user.SubscriptionEnd.Sub(now).Hours() / 24)
		}
		err := j.notifier.Send(ctx, notify.TemplateSubscriptionWarning, notify.Recipient{
			To: user.Email,
			Data: map[string]string{
				"username":       user.Username,
				"daysLeft":       strconv.Itoa(daysLeft),
				"expirationDate": formatDate(user.SubscriptionEnd),
			},
		})
		if err != nil {
			j.logger.Error("failed to send renewal reminder", "user_id", user.ID, "error", err)
			failed++
			continue
		}
		if err := j.store.MarkReminderSent(ctx, user.ID, now); err != nil {
			j.logger.Error("failed to stamp reminder cooldown", "user_id", user.ID, "error", err)
		}
		sent++
	}
	j.logger.Info("renewal reminders dispatched", "sent", sent, "failed", failed)
}

// RunWeeklySummary emails the aggregate subscription stats to the admin.
func (j *Jobs) RunWeeklySummary() {
	if j.config.AdminEmail == "" {
		j.logger.Warn("weekly summary skipped, no admin email configured")
		return
	}
	j.logger.Info("starting weekly subscription summary")
	ctx, cancel := j.tickContext()
	defer cancel()

	stats, err := j.stats.Stats(ctx)
	if err != nil {
		j.logger.Error("failed to aggregate subscription stats", "error", err)
		return
	}

	err = j.notifier.Send(ctx, notify.TemplateAdminWeeklySummary, notify.Recipient{
		To: j.config.AdminEmail,
		Data: map[string]string{
			"totalUsers":       strconv.Itoa(stats.TotalUsers),
			"premiumUsers":     strconv.Itoa(stats.ByStatus[domain.StatusPremium]),
			"expiringSoon":     strconv.Itoa(stats.ExpiringSoon),
			"needsCleanup":     strconv.Itoa(stats.NeedsCleanup),
			"estimatedRevenue": strconv.Itoa(stats.EstimatedRevenue),
		},
	})
	if err != nil {
		j.logger.Error("failed to send weekly summary", "error", err)
		return
	}
	j.logger.Info("weekly summary sent", "to", j.config.AdminEmail)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("January 2, 2006")
}
