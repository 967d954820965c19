package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore/mocks"
	"github.com/Black-And-White-Club/discord-osu-bot/app/shared/testutils"
	cache "github.com/Black-And-White-Club/discord-osu-bot/bigcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeMetrics struct {
	mu      sync.Mutex
	linked  []int
	entries []int
}

func (f *fakeMetrics) SetLinkedAccounts(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linked = append(f.linked, n)
}

func (f *fakeMetrics) SetStarCacheEntries(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, n)
}

func (f *fakeMetrics) snapshot() (linked, entries []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.linked...), append([]int(nil), f.entries...)
}

type statsCache struct {
	cache.CacheInterface
	stats cache.Stats
}

func (c statsCache) Stats() cache.Stats { return c.stats }

func TestScheduler_RefreshLinkedAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	gomock.InOrder(
		store.EXPECT().Count(gomock.Any()).Return(3, nil),
		store.EXPECT().Count(gomock.Any()).Return(0, errors.New("malformed")),
	)

	metrics := &fakeMetrics{}
	s, err := NewScheduler(store, nil, testutils.NoOpLogger(), metrics)
	require.NoError(t, err)

	s.RefreshLinkedAccounts(context.Background())
	s.RefreshLinkedAccounts(context.Background())

	linked, _ := metrics.snapshot()
	assert.Equal(t, []int{3}, linked)
}

func TestScheduler_ReportCacheStats(t *testing.T) {
	metrics := &fakeMetrics{}
	s, err := NewScheduler(nil, statsCache{stats: cache.Stats{Entries: 7, Hits: 10, Misses: 2}}, testutils.NoOpLogger(), metrics)
	require.NoError(t, err)

	s.ReportCacheStats(context.Background())

	_, entries := metrics.snapshot()
	assert.Equal(t, []int{7}, entries)
}

func TestScheduler_StartRunsJobsImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Count(gomock.Any()).Return(2, nil).MinTimes(1)

	metrics := &fakeMetrics{}
	s, err := NewScheduler(store, statsCache{stats: cache.Stats{Entries: 1}}, testutils.NoOpLogger(), metrics)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background(), time.Hour, time.Hour))
	t.Cleanup(func() { _ = s.Shutdown() })

	require.Eventually(t, func() bool {
		linked, entries := metrics.snapshot()
		return len(linked) > 0 && len(entries) > 0
	}, 2*time.Second, 10*time.Millisecond)
}
