package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestInteractionStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	is := newInteractionStore[string](time.Minute)

	if err := is.Set(ctx, "", "x"); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := is.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := is.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	is.Delete(ctx, "k")
	if _, err := is.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestInteractionStore_ExpiryAndCleanup(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	is := newInteractionStore[int](time.Minute)
	is.now = func() time.Time { return now }

	_ = is.Set(ctx, "a", 1)
	_ = is.Set(ctx, "b", 2)

	now = now.Add(2 * time.Minute)
	if _, err := is.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired item to be hidden, got %v", err)
	}
	if is.Len() != 2 {
		t.Fatalf("expired items stay until cleanup, Len = %d", is.Len())
	}

	is.performCleanup()
	if is.Len() != 0 {
		t.Fatalf("expected cleanup to remove expired items, Len = %d", is.Len())
	}
}

func TestInteractionStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	is := newInteractionStore[string](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				_ = is.Set(ctx, key, "value")
				_, _ = is.Get(ctx, key)
				is.Delete(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if is.Len() != 0 {
		t.Fatalf("expected empty store, Len = %d", is.Len())
	}
}
