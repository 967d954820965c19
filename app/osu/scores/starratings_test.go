package scores

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api/mocks"
	cache "github.com/Black-And-White-Club/discord-osu-bot/bigcache"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingMetrics struct {
	mu      sync.Mutex
	results []string
}

func (m *recordingMetrics) RecordStarRating(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

func (m *recordingMetrics) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.results...)
}

func newTestStarCache(t *testing.T) *StarCache {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	c, err := cache.NewCache(ctx, cache.Options{LifeWindow: time.Hour, CleanWindow: time.Minute, MaxSizeMB: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return NewStarCache(c)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func moddedScore(id int64, base float64, mods ...string) api.Score {
	return api.Score{
		Mods:    api.Mods(mods),
		Beatmap: &api.Beatmap{ID: id, DifficultyRating: ptr(base)},
	}
}

func TestStarKey_IgnoresModOrder(t *testing.T) {
	require.Equal(t, StarKey(1, api.Mods{"HR", "DT"}), StarKey(1, api.Mods{"DT", "HR"}))
	require.NotEqual(t, StarKey(1, api.Mods{"HR"}), StarKey(2, api.Mods{"HR"}))
}

func TestStarRatings_Lookup(t *testing.T) {
	t.Run("nomod uses base without fetching", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockOsuClient(ctrl)
		metrics := &recordingMetrics{}
		r := NewStarRatings(client, newTestStarCache(t), discard(), metrics)

		got := r.Lookup(context.Background(), moddedScore(1, 5.5))
		require.NotNil(t, got)
		require.Equal(t, 5.5, *got)
		require.Equal(t, []string{"base"}, metrics.snapshot())
	})

	t.Run("modded fetches once then memoizes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockOsuClient(ctrl)
		client.EXPECT().
			GetDifficultyAttributes(gomock.Any(), int64(42), gomock.Any()).
			Return(&api.DifficultyAttributes{StarRating: 7.25}, nil).
			Times(1)

		metrics := &recordingMetrics{}
		r := NewStarRatings(client, newTestStarCache(t), discard(), metrics)

		first := r.Lookup(context.Background(), moddedScore(42, 5.5, "HR", "DT"))
		second := r.Lookup(context.Background(), moddedScore(42, 5.5, "DT", "HR"))
		require.Equal(t, 7.25, *first)
		require.Equal(t, 7.25, *second)
		require.Equal(t, []string{"miss", "hit"}, metrics.snapshot())
	})

	t.Run("failure falls back to base", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockOsuClient(ctrl)
		client.EXPECT().
			GetDifficultyAttributes(gomock.Any(), int64(42), gomock.Any()).
			Return(nil, errors.New("boom"))

		metrics := &recordingMetrics{}
		r := NewStarRatings(client, newTestStarCache(t), discard(), metrics)

		got := r.Lookup(context.Background(), moddedScore(42, 5.5, "HD"))
		require.Equal(t, 5.5, *got)
		require.Equal(t, []string{"fallback"}, metrics.snapshot())
	})

	t.Run("failure without base yields nil", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockOsuClient(ctrl)
		client.EXPECT().
			GetDifficultyAttributes(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("boom"))

		r := NewStarRatings(client, newTestStarCache(t), discard(), nil)
		s := api.Score{Mods: api.Mods{"HD"}, Beatmap: &api.Beatmap{ID: 9}}
		require.Nil(t, r.Lookup(context.Background(), s))
	})
}

func TestStarRatings_ResolvePage(t *testing.T) {
	page := NormalizeAll([]api.Score{
		moddedScore(1, 4.0, "HR"),
		moddedScore(2, 5.0),
		moddedScore(3, 6.0, "DT"),
	})

	t.Run("all lookups finish", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockOsuClient(ctrl)
		client.EXPECT().GetDifficultyAttributes(gomock.Any(), int64(1), gomock.Any()).
			Return(&api.DifficultyAttributes{StarRating: 4.4}, nil)
		client.EXPECT().GetDifficultyAttributes(gomock.Any(), int64(3), gomock.Any()).
			Return(&api.DifficultyAttributes{StarRating: 8.1}, nil)

		r := NewStarRatings(client, newTestStarCache(t), discard(), nil)
		ratings, complete := r.ResolvePage(context.Background(), page)

		require.True(t, complete)
		require.Equal(t, 4.4, *ratings[0])
		require.Equal(t, 5.0, *ratings[1])
		require.Equal(t, 8.1, *ratings[2])
	})

	t.Run("timeout uses base ratings for the whole page", func(t *testing.T) {
		hold := make(chan struct{})
		t.Cleanup(func() { close(hold) })
		r := NewStarRatings(mixedFetcher{hold: hold}, newTestStarCache(t), discard(), nil)
		r.Timeout = 20 * time.Millisecond

		start := time.Now()
		ratings, complete := r.ResolvePage(context.Background(), page)

		require.False(t, complete)
		require.Less(t, time.Since(start), 2*time.Second)
		require.Equal(t, 4.0, *ratings[0])
		require.Equal(t, 5.0, *ratings[1])
		require.Equal(t, 6.0, *ratings[2])
	})

	t.Run("timeout discards lookups that already finished", func(t *testing.T) {
		hold := make(chan struct{})
		t.Cleanup(func() { close(hold) })
		r := NewStarRatings(mixedFetcher{fast: 1, hold: hold}, nil, discard(), nil)
		r.Timeout = 20 * time.Millisecond

		ratings, complete := r.ResolvePage(context.Background(), page)

		require.False(t, complete)
		require.Equal(t, 4.0, *ratings[0])
		require.Equal(t, 5.0, *ratings[1])
		require.Equal(t, 6.0, *ratings[2])
	})
}

// mixedFetcher answers the fast beatmap at once and holds every other one until hold closes.
type mixedFetcher struct {
	fast int64
	hold chan struct{}
}

func (f mixedFetcher) GetDifficultyAttributes(_ context.Context, beatmapID int64, _ api.Mods) (*api.DifficultyAttributes, error) {
	if beatmapID == f.fast {
		return &api.DifficultyAttributes{StarRating: 9.9}, nil
	}
	<-f.hold
	return nil, errors.New("held")
}

// gatedFetcher blocks until release is closed or its context ends.
type gatedFetcher struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *gatedFetcher) GetDifficultyAttributes(ctx context.Context, _ int64, _ api.Mods) (*api.DifficultyAttributes, error) {
	f.once.Do(func() { close(f.entered) })
	select {
	case <-f.release:
		return &api.DifficultyAttributes{StarRating: 9.9}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestStarRatings_SharedFetchOutlivesFirstCaller(t *testing.T) {
	fetcher := &gatedFetcher{entered: make(chan struct{}), release: make(chan struct{})}
	r := NewStarRatings(fetcher, newTestStarCache(t), discard(), nil)
	score := moddedScore(42, 5.5, "HR")

	ctxA, cancelA := context.WithCancel(context.Background())
	results := make(chan *float64, 2)
	go func() { results <- r.Lookup(ctxA, score) }()
	<-fetcher.entered
	go func() { results <- r.Lookup(context.Background(), score) }()

	time.Sleep(20 * time.Millisecond)
	cancelA()
	time.Sleep(20 * time.Millisecond)
	close(fetcher.release)

	for range 2 {
		got := <-results
		require.NotNil(t, got)
		require.Equal(t, 9.9, *got)
	}
}

func TestStarCache_BoundedAndStale(t *testing.T) {
	c := newTestStarCache(t)
	key := StarKey(5, api.Mods{"HR"})

	_, ok := c.Get(key)
	require.False(t, ok)

	c.Set(key, 6.66)
	got, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, 6.66, got)

	// Entries are never refreshed from upstream; a later write is the only way
	// to change a memoized rating before it ages out.
	c.Set(key, 6.7)
	got, _ = c.Get(key)
	require.Equal(t, 6.7, got)

	var nilCache *StarCache
	_, ok = nilCache.Get(key)
	require.False(t, ok)
}

func TestRenderer_RenderPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockOsuClient(ctrl)
	client.EXPECT().GetDifficultyAttributes(gomock.Any(), int64(1), gomock.Any()).
		Return(&api.DifficultyAttributes{StarRating: 4.4}, nil)

	r := &Renderer{
		Ratings:   NewStarRatings(client, newTestStarCache(t), discard(), nil),
		Formatter: Formatter{Helpers: testHelpers()},
	}
	plays := r.RenderPage(context.Background(), NormalizeAll([]api.Score{
		moddedScore(1, 4.0, "HR"),
		moddedScore(2, 5.0),
	}), 10)

	require.Len(t, plays, 2)
	require.Equal(t, 11, plays[0].Ordinal)
	require.Equal(t, "4.40★", plays[0].StarRating)
	require.Equal(t, 12, plays[1].Ordinal)
	require.Equal(t, "5.00★", plays[1].StarRating)
}
