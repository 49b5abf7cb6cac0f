package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Susan56789/flixxit-sub000/internal/domain"
	"github.com/Susan56789/flixxit-sub000/internal/notify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserStore is an in-memory stand-in for the user repository. It
// implements both UserStore and SweepStore so lifecycle and sweep tests can
// share one world.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User

	sweepErrs []error // consumed one per SweepExpired call before succeeding
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*domain.User{}}
}

func (f *fakeUserStore) put(u *domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *u
	f.users[u.ID] = &copied
}

func (f *fakeUserStore) get(id string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	copied := *u
	return &copied
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) SaveSubscription(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserStore) SetPreferredGenre(ctx context.Context, userID, genre string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PreferredGenre = genre
	return nil
}

func (f *fakeUserStore) SubscriptionStats(ctx context.Context, now time.Time, warningWindow time.Duration) (*domain.SubscriptionStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.SubscriptionStats{
		ByStatus:     map[string]int{},
		ActiveByPlan: map[string]int{},
	}
	for _, u := range f.users {
		stats.TotalUsers++
		stats.ByStatus[u.SubscriptionStatus]++
		if u.SubscriptionActive && u.SubscriptionType != nil {
			stats.ActiveByPlan[*u.SubscriptionType]++
		}
		if u.SubscriptionActive && u.SubscriptionEnd != nil {
			switch {
			case u.SubscriptionEnd.Before(now):
				stats.NeedsCleanup++
			case !u.SubscriptionEnd.After(now.Add(warningWindow)):
				stats.ExpiringSoon++
			}
		}
	}
	return stats, nil
}

func (f *fakeUserStore) SweepExpired(ctx context.Context, now time.Time) ([]domain.ExpiredUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sweepErrs) > 0 {
		err := f.sweepErrs[0]
		f.sweepErrs = f.sweepErrs[1:]
		return nil, err
	}
	var expired []domain.ExpiredUser
	for _, u := range f.users {
		if u.SubscriptionActive && u.SubscriptionEnd != nil && u.SubscriptionEnd.Before(now) {
			expired = append(expired, domain.ExpiredUser{
				ID: u.ID, Email: u.Email, Username: u.Username, ExpiredAt: *u.SubscriptionEnd,
			})
			u.SubscriptionStatus = domain.StatusFree
			u.SubscriptionActive = false
		}
	}
	return expired, nil
}

func (f *fakeUserStore) GetUsersNeedingReminder(ctx context.Context, now time.Time, window, cooldown time.Duration) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []domain.User
	for _, u := range f.users {
		if !u.SubscriptionActive || u.SubscriptionEnd == nil {
			continue
		}
		if u.SubscriptionEnd.Before(now) || u.SubscriptionEnd.After(now.Add(window)) {
			continue
		}
		if u.LastReminderSent != nil && u.LastReminderSent.After(now.Add(-cooldown)) {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeUserStore) MarkReminderSent(ctx context.Context, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		stamp := at
		u.LastReminderSent = &stamp
	}
	return nil
}

// fakeNotifier records dispatched notifications and can fail specific
// recipients.
type fakeNotifier struct {
	mu     sync.Mutex
	sent   []string // "templateID|to"
	failTo map[string]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failTo: map[string]error{}}
}

func (f *fakeNotifier) Send(ctx context.Context, templateID string, recipient notify.Recipient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTo[recipient.To]; ok {
		return err
	}
	f.sent = append(f.sent, templateID+"|"+recipient.To)
	return nil
}

func (f *fakeNotifier) SendBatch(ctx context.Context, templateID string, recipients []notify.Recipient) notify.BatchResult {
	var result notify.BatchResult
	for _, r := range recipients {
		if err := f.Send(ctx, templateID, r); err != nil {
			result.Failed++
			continue
		}
		result.Sent++
	}
	return result
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []string // routing keys
}

func (f *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, routingKey)
	return nil
}
