package scores

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultLookupTimeout bounds the difficulty lookups of one page.
const DefaultLookupTimeout = 8 * time.Second

// DifficultyFetcher is the slice of the osu! client the resolver needs.
type DifficultyFetcher interface {
	GetDifficultyAttributes(ctx context.Context, beatmapID int64, mods api.Mods) (*api.DifficultyAttributes, error)
}

// StarRatings resolves the star rating to show for a play, adjusting for mods
// when the API can tell us and falling back to the base rating otherwise.
type StarRatings struct {
	fetcher DifficultyFetcher
	cache   *StarCache
	group   singleflight.Group
	logger  *slog.Logger
	metrics observability.CacheMetrics
	// Timeout bounds ResolvePage. Zero means DefaultLookupTimeout.
	Timeout time.Duration
}

func NewStarRatings(fetcher DifficultyFetcher, starCache *StarCache, logger *slog.Logger, metrics observability.CacheMetrics) *StarRatings {
	return &StarRatings{
		fetcher: fetcher,
		cache:   starCache,
		logger:  logger,
		metrics: metrics,
		Timeout: DefaultLookupTimeout,
	}
}

// Lookup never fails: any error degrades to the base rating, which may itself be nil.
func (r *StarRatings) Lookup(ctx context.Context, s api.Score) *float64 {
	base := BaseStarRating(s)
	if len(s.Mods) == 0 || s.Beatmap == nil || s.Beatmap.ID == 0 {
		r.record("base")
		return base
	}

	key := StarKey(s.Beatmap.ID, s.Mods)
	if sr, ok := r.cache.Get(key); ok {
		r.record("hit")
		return &sr
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		// Other pages may be waiting on this fetch, so the caller's deadline does not apply.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout())
		defer cancel()
		attrs, err := r.fetcher.GetDifficultyAttributes(fetchCtx, s.Beatmap.ID, s.Mods)
		if err != nil {
			return nil, err
		}
		r.cache.Set(key, attrs.StarRating)
		return attrs.StarRating, nil
	})
	if err != nil {
		if r.logger != nil {
			r.logger.DebugContext(ctx, "Falling back to base star rating",
				attr.Int64("beatmap_id", s.Beatmap.ID),
				attr.String("mods", s.Mods.Key()),
				attr.Error(err),
			)
		}
		r.record("fallback")
		return base
	}

	r.record("miss")
	sr := v.(float64)
	return &sr
}

// ResolvePage looks up every play of a page concurrently. When the page does
// not finish within Timeout, every play gets its base rating and complete is false.
func (r *StarRatings) ResolvePage(ctx context.Context, page []NormalizedScore) (ratings []*float64, complete bool) {
	timeout := r.timeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolved := make([]*float64, len(page))
	g, gctx := errgroup.WithContext(ctx)
	for i := range page {
		g.Go(func() error {
			resolved[i] = r.Lookup(gctx, page[i].Score)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
		return resolved, true
	case <-ctx.Done():
		if r.logger != nil {
			r.logger.WarnContext(ctx, "Star rating lookups timed out, using base ratings",
				attr.Int("plays", len(page)),
				attr.Duration("timeout", timeout),
			)
		}
		base := make([]*float64, len(page))
		for i := range page {
			base[i] = BaseStarRating(page[i].Score)
		}
		return base, false
	}
}

func (r *StarRatings) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultLookupTimeout
	}
	return r.Timeout
}

// BaseStarRating is the nomod rating carried on the beatmap, nil if absent.
func BaseStarRating(s api.Score) *float64 {
	if s.Beatmap == nil {
		return nil
	}
	return s.Beatmap.DifficultyRating
}

func (r *StarRatings) record(result string) {
	if r.metrics != nil {
		r.metrics.RecordStarRating(result)
	}
}
