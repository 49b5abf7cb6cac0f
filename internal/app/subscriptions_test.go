package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
)

func newTestSubscriptionService(store *fakeUserStore, at time.Time) *SubscriptionService {
	svc := NewSubscriptionService(store, domain.DefaultPlanCatalog(), &fakePublisher{}, testLogger(), 7*24*time.Hour)
	svc.now = func() time.Time { return at }
	return svc
}

func seedFreeUser(store *fakeUserStore, id string) {
	store.put(&domain.User{
		ID:                 id,
		Email:              id + "@example.com",
		Username:           id,
		SubscriptionStatus: domain.StatusFree,
	})
}

func TestSubscribeActivatesPremium(t *testing.T) {
	store := newFakeUserStore()
	seedFreeUser(store, "u1")
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(store, t0)

	user, err := svc.Subscribe(context.Background(), "u1", "monthly")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if user.SubscriptionStatus != domain.StatusPremium || !user.SubscriptionActive {
		t.Fatalf("expected active premium, got %s active=%v", user.SubscriptionStatus, user.SubscriptionActive)
	}
	want := t0.AddDate(0, 0, 30)
	if !user.SubscriptionEnd.Equal(want) {
		t.Fatalf("expected expiration %v, got %v", want, user.SubscriptionEnd)
	}
}

func TestSubscribeUnknownPlan(t *testing.T) {
	store := newFakeUserStore()
	seedFreeUser(store, "u1")
	svc := newTestSubscriptionService(store, time.Now())

	_, err := svc.Subscribe(context.Background(), "u1", "lifetime")
	if !errors.Is(err, domain.ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
}

func TestSubscribeUnknownUser(t *testing.T) {
	svc := newTestSubscriptionService(newFakeUserStore(), time.Now())

	_, err := svc.Subscribe(context.Background(), "ghost", "monthly")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestExtendStacksOnUnexpiredSubscription(t *testing.T) {
	store := newFakeUserStore()
	seedFreeUser(store, "u1")
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(store, t0)

	if _, err := svc.Subscribe(context.Background(), "u1", "yearly"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// 200 days in, still valid: the new month stacks on the yearly expiration.
	svc.now = func() time.Time { return t0.AddDate(0, 0, 200) }
	user, err := svc.Extend(context.Background(), "u1", "monthly")
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	want := t0.AddDate(0, 0, 365).AddDate(0, 0, 30)
	if !user.SubscriptionEnd.Equal(want) {
		t.Fatalf("expected stacked expiration %v, got %v", want, user.SubscriptionEnd)
	}
	if *user.SubscriptionType != "yearly" {
		t.Fatalf("extend must not change the plan type, got %s", *user.SubscriptionType)
	}
}

func TestExtendRestartsFreshAfterLapse(t *testing.T) {
	store := newFakeUserStore()
	seedFreeUser(store, "u1")
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(store, t0)

	if _, err := svc.Subscribe(context.Background(), "u1", "monthly"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// 45 days in, the month is over: extending starts fresh from now.
	later := t0.AddDate(0, 0, 45)
	svc.now = func() time.Time { return later }
	user, err := svc.Extend(context.Background(), "u1", "monthly")
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	want := later.AddDate(0, 0, 30)
	if !user.SubscriptionEnd.Equal(want) {
		t.Fatalf("expected fresh expiration %v, got %v", want, user.SubscriptionEnd)
	}
	if !user.SubscriptionStart.Equal(later) {
		t.Fatalf("fresh restart should reset the start date, got %v", user.SubscriptionStart)
	}
}

func TestExtendNeverSubscribedStartsFresh(t *testing.T) {
	store := newFakeUserStore()
	seedFreeUser(store, "u1")
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(store, t0)

	user, err := svc.Extend(context.Background(), "u1", "quarterly")
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	want := t0.AddDate(0, 0, 90)
	if !user.SubscriptionEnd.Equal(want) {
		t.Fatalf("expected expiration %v, got %v", want, user.SubscriptionEnd)
	}
	if user.SubscriptionStatus != domain.StatusPremium {
		t.Fatalf("expected premium, got %s", user.SubscriptionStatus)
	}
}

func TestUpdatePlanChangesTypeAndStacks(t *testing.T) {
	store := newFakeUserStore()
	seedFreeUser(store, "u1")
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(store, t0)

	if _, err := svc.Subscribe(context.Background(), "u1", "monthly"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	svc.now = func() time.Time { return t0.AddDate(0, 0, 10) }
	user, err := svc.UpdatePlan(context.Background(), "u1", "yearly")
	if err != nil {
		t.Fatalf("update plan: %v", err)
	}
	if *user.SubscriptionType != "yearly" {
		t.Fatalf("expected plan type yearly, got %s", *user.SubscriptionType)
	}
	want := t0.AddDate(0, 0, 30).AddDate(0, 0, 365)
	if !user.SubscriptionEnd.Equal(want) {
		t.Fatalf("expected stacked expiration %v, got %v", want, user.SubscriptionEnd)
	}
}

func TestCancelRestampsAuditEvenWhenFree(t *testing.T) {
	store := newFakeUserStore()
	seedFreeUser(store, "u1")
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(store, t0)

	user, err := svc.Cancel(context.Background(), "u1", "too expensive")
	if err != nil {
		t.Fatalf("cancel free user: %v", err)
	}
	if user.CancellationDate == nil || !user.CancellationDate.Equal(t0) {
		t.Fatalf("expected cancellation stamped at %v, got %v", t0, user.CancellationDate)
	}

	// Cancelling again later re-stamps the audit fields.
	t1 := t0.AddDate(0, 0, 3)
	svc.now = func() time.Time { return t1 }
	user, err = svc.Cancel(context.Background(), "u1", "changed my mind")
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if !user.CancellationDate.Equal(t1) {
		t.Fatalf("expected re-stamped cancellation at %v, got %v", t1, user.CancellationDate)
	}
	if *user.CancellationReason != "changed my mind" {
		t.Fatalf("expected updated reason, got %q", *user.CancellationReason)
	}
}

func TestReactivateIsFreshAndClearsCancellation(t *testing.T) {
	store := newFakeUserStore()
	seedFreeUser(store, "u1")
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(store, t0)

	if _, err := svc.Subscribe(context.Background(), "u1", "yearly"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), "u1", "moving abroad"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	t1 := t0.AddDate(0, 0, 5)
	svc.now = func() time.Time { return t1 }
	user, err := svc.Reactivate(context.Background(), "u1", "monthly")
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	// Always fresh from now, even though the old yearly period was unexpired.
	want := t1.AddDate(0, 0, 30)
	if !user.SubscriptionEnd.Equal(want) {
		t.Fatalf("expected fresh expiration %v, got %v", want, user.SubscriptionEnd)
	}
	if user.CancellationDate != nil || user.CancellationReason != nil {
		t.Fatal("expected cancellation audit fields cleared")
	}
	if user.ReactivationDate == nil || !user.ReactivationDate.Equal(t1) {
		t.Fatalf("expected reactivation date %v, got %v", t1, user.ReactivationDate)
	}
}

func TestStatsComputesRevenueFromActivePlans(t *testing.T) {
	store := newFakeUserStore()
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(store, t0)

	for i, plan := range []string{"monthly", "monthly", "yearly"} {
		id := string(rune('a' + i))
		seedFreeUser(store, id)
		if _, err := svc.Subscribe(context.Background(), id, plan); err != nil {
			t.Fatalf("subscribe %s: %v", id, err)
		}
	}
	seedFreeUser(store, "free-user")

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 4 {
		t.Fatalf("expected 4 users, got %d", stats.TotalUsers)
	}
	if got := stats.ByStatus[domain.StatusPremium]; got != 3 {
		t.Fatalf("expected 3 premium users, got %d", got)
	}
	// 2 monthly at 10 plus 1 yearly at 100.
	if stats.EstimatedRevenue != 120 {
		t.Fatalf("expected revenue 120, got %d", stats.EstimatedRevenue)
	}
}

func TestHistoryDefaultsStatusToFree(t *testing.T) {
	store := newFakeUserStore()
	store.put(&domain.User{ID: "u1", Email: "u1@example.com", Username: "u1"})
	svc := newTestSubscriptionService(store, time.Now())

	history, err := svc.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history.Status != domain.StatusFree {
		t.Fatalf("expected default status Free, got %s", history.Status)
	}
}

// TestLifecycleScenario walks the full arc: a yearly subscription extended
// mid-term, swept after expiry, then reactivated the next day.
func TestLifecycleScenario(t *testing.T) {
	store := newFakeUserStore()
	seedFreeUser(store, "alice")
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestSubscriptionService(store, t0)

	if _, err := svc.Subscribe(context.Background(), "alice", "yearly"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// T0+200d: extend by a month while still valid.
	svc.now = func() time.Time { return t0.AddDate(0, 0, 200) }
	user, err := svc.Extend(context.Background(), "alice", "monthly")
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	wantEnd := t0.AddDate(0, 0, 365).AddDate(0, 0, 30)
	if !user.SubscriptionEnd.Equal(wantEnd) {
		t.Fatalf("expected expiration %v, got %v", wantEnd, user.SubscriptionEnd)
	}

	// T0+400d: past expiration, the sweep flips alice to Free.
	sweepAt := t0.AddDate(0, 0, 400)
	notifier := newFakeNotifier()
	jobs := NewJobs(store, svc, notifier, &fakePublisher{}, testLogger(), JobsConfig{
		WarningWindow:    7 * 24 * time.Hour,
		ReminderCooldown: 24 * time.Hour,
	})
	jobs.now = func() time.Time { return sweepAt }
	jobs.RunDailySweep()

	swept := store.get("alice")
	if swept.SubscriptionStatus != domain.StatusFree || swept.SubscriptionActive {
		t.Fatalf("expected alice swept to Free/inactive, got %s active=%v",
			swept.SubscriptionStatus, swept.SubscriptionActive)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected one expiry notice, got %d", notifier.count())
	}

	// T0+401d: reactivation starts a fresh month.
	reactivateAt := t0.AddDate(0, 0, 401)
	svc.now = func() time.Time { return reactivateAt }
	user, err = svc.Reactivate(context.Background(), "alice", "monthly")
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	wantEnd = reactivateAt.AddDate(0, 0, 30)
	if !user.SubscriptionEnd.Equal(wantEnd) {
		t.Fatalf("expected expiration %v, got %v", wantEnd, user.SubscriptionEnd)
	}
	if user.SubscriptionStatus != domain.StatusPremium || !user.SubscriptionActive {
		t.Fatal("expected alice back on active premium")
	}
	if user.CancellationDate != nil {
		t.Fatal("expected cancellation audit cleared on reactivation")
	}
}
