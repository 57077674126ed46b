package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Subscriber is a callback invoked when a banner is published.
type Subscriber func(Banner)

// Bus is a synchronous in-process banner bus. It persists banners to a Store
// and dispatches them to subscribers inline.
type Bus struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu          sync.Mutex
	subscribers []Subscriber
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithClock overrides the clock used for timestamps and expiry.
func WithClock(now func() time.Time) BusOption {
	return func(b *Bus) { b.now = now }
}

// NewBus creates a banner bus backed by the given store. Banners published
// without a deadline expire after ttl; a ttl of zero keeps them until
// dismissed. If store is nil, banners are dispatched but not persisted.
func NewBus(store Store, ttl time.Duration, opts ...BusOption) *Bus {
	b := &Bus{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish assigns an ID and deadline, persists the banner and dispatches it
// to all subscribers. Persistence failures are logged, not returned.
func (b *Bus) Publish(ctx context.Context, banner Banner) Banner {
	if banner.ID == "" {
		banner.ID = uuid.NewString()
	}
	if banner.Level == "" {
		banner.Level = LevelInfo
	}
	if banner.CreatedAt.IsZero() {
		banner.CreatedAt = b.now()
	}
	if banner.ExpiresAt.IsZero() && b.ttl > 0 {
		banner.ExpiresAt = banner.CreatedAt.Add(b.ttl)
	}

	if b.store != nil {
		if err := b.store.Save(ctx, banner); err != nil {
			log.Error().Err(err).Str("message", banner.Message).Msg("failed to persist banner")
		}
	}

	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(banner)
	}

	return banner
}

// Errorf publishes an error-level banner.
func (b *Bus) Errorf(ctx context.Context, format string, args ...any) Banner {
	return b.Publish(ctx, Banner{Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

// Warnf publishes a warning-level banner.
func (b *Bus) Warnf(ctx context.Context, format string, args ...any) Banner {
	return b.Publish(ctx, Banner{Level: LevelWarning, Message: fmt.Sprintf(format, args...)})
}

// Infof publishes an info-level banner.
func (b *Bus) Infof(ctx context.Context, format string, args ...any) Banner {
	return b.Publish(ctx, Banner{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

// ShowBanner publishes text as an info banner.
func (b *Bus) ShowBanner(ctx context.Context, text string) error {
	b.Publish(ctx, Banner{Level: LevelInfo, Message: text})
	return nil
}

// Active returns the banners that are not expired, newest first.
// Returns nil if no store is configured.
func (b *Bus) Active(ctx context.Context) ([]Banner, error) {
	if b.store == nil {
		return nil, nil
	}

	all, err := b.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}

	now := b.now()
	active := make([]Banner, 0, len(all))
	for _, banner := range all {
		if !banner.Expired(now) {
			active = append(active, banner)
		}
	}
	return active, nil
}

// Dismiss removes a banner by ID.
func (b *Bus) Dismiss(ctx context.Context, id string) error {
	if b.store == nil {
		return ErrNotFound
	}
	return b.store.Delete(ctx, id)
}

// Clear deletes all persisted banners.
func (b *Bus) Clear(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(ctx)
}

// Sweep deletes expired banners and returns how many were removed.
func (b *Bus) Sweep(ctx context.Context) (int64, error) {
	if b.store == nil {
		return 0, nil
	}
	return b.store.DeleteExpired(ctx, b.now())
}
