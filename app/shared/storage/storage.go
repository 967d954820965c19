package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
)

// ErrNotFound is returned by Get for a missing or expired key.
var ErrNotFound = errors.New("item not found or expired")

// ISInterface defines the behavior for the interaction store using Generics [T]
type ISInterface[T any] interface {
	Set(ctx context.Context, key string, value T) error
	Delete(ctx context.Context, key string)
	Get(ctx context.Context, key string) (T, error)
	Len() int
}

// interactionItem holds the data and the expiration timestamp
type interactionItem[T any] struct {
	value      T
	expiryTime int64 // UnixNano
}

// InteractionStore keeps short-lived interaction state, such as an open
// pagination menu, keyed by an opaque ID.
type InteractionStore[T any] struct {
	store map[string]interactionItem[T]
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// NewInteractionStore starts a janitor that runs until ctx is cancelled.
func NewInteractionStore[T any](ctx context.Context, ttl time.Duration, cleanupInterval time.Duration) *InteractionStore[T] {
	is := newInteractionStore[T](ttl)
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	go is.startJanitor(ctx, cleanupInterval)
	return is
}

func newInteractionStore[T any](ttl time.Duration) *InteractionStore[T] {
	return &InteractionStore[T]{
		store: make(map[string]interactionItem[T]),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (ts *InteractionStore[T]) Set(ctx context.Context, key string, value T) error {
	if key == "" {
		return errors.New("interaction key is empty")
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.store[key] = interactionItem[T]{
		value:      value,
		expiryTime: ts.now().Add(ts.ttl).UnixNano(),
	}

	slog.DebugContext(ctx, "InteractionStore: Stored item", attr.String("key", key))
	return nil
}

func (ts *InteractionStore[T]) Get(_ context.Context, key string) (T, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	item, exists := ts.store[key]
	if !exists || ts.now().UnixNano() > item.expiryTime {
		var zero T
		return zero, ErrNotFound
	}

	return item.value, nil
}

func (ts *InteractionStore[T]) Delete(_ context.Context, key string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	delete(ts.store, key)
}

// Len counts stored items, including expired ones the janitor has not removed yet.
func (ts *InteractionStore[T]) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.store)
}

// startJanitor runs in the background and removes expired keys at a fixed interval
func (ts *InteractionStore[T]) startJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ts.performCleanup()
		}
	}
}

func (ts *InteractionStore[T]) performCleanup() {
	now := ts.now().UnixNano()

	ts.mu.Lock()
	defer ts.mu.Unlock()

	initialSize := len(ts.store)
	for id, item := range ts.store {
		if now > item.expiryTime {
			delete(ts.store, id)
		}
	}

	removed := initialSize - len(ts.store)
	if removed > 0 {
		slog.Debug("InteractionStore: Cleanup complete",
			attr.Int("removed_count", removed),
			attr.Int("remaining_count", len(ts.store)))
	}
}
