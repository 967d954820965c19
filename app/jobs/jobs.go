// Package jobs runs the periodic housekeeping of the bot.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	cache "github.com/Black-And-White-Club/discord-osu-bot/bigcache"
	"github.com/go-co-op/gocron/v2"
)

const (
	DefaultLinkedAccountsInterval = 5 * time.Minute
	DefaultCacheStatsInterval     = 10 * time.Minute
)

type Metrics interface {
	SetLinkedAccounts(n int)
	SetStarCacheEntries(n int)
}

// Scheduler refreshes the linked-account gauge and reports star rating cache
// statistics on fixed intervals.
type Scheduler struct {
	scheduler gocron.Scheduler
	links     linkstore.Store
	starCache cache.CacheInterface
	logger    *slog.Logger
	metrics   Metrics
}

func NewScheduler(links linkstore.Store, starCache cache.CacheInterface, logger *slog.Logger, metrics Metrics) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		links:     links,
		starCache: starCache,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Start registers both jobs and starts the scheduler. Each job also runs once immediately.
func (s *Scheduler) Start(ctx context.Context, linkedEvery, statsEvery time.Duration) error {
	jobs := []struct {
		name  string
		every time.Duration
		run   func(context.Context)
	}{
		{"linked-accounts-gauge", linkedEvery, s.RefreshLinkedAccounts},
		{"star-cache-stats", statsEvery, s.ReportCacheStats},
	}
	for _, j := range jobs {
		run := j.run
		if _, err := s.scheduler.NewJob(
			gocron.DurationJob(j.every),
			gocron.NewTask(func() { run(ctx) }),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", j.name, err)
		}
	}
	s.scheduler.Start()
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}

// RefreshLinkedAccounts sets the linked-account gauge from the link file.
func (s *Scheduler) RefreshLinkedAccounts(ctx context.Context) {
	n, err := s.links.Count(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to count linked accounts", attr.Error(err))
		return
	}
	s.metrics.SetLinkedAccounts(n)
}

// ReportCacheStats logs the star rating cache counters and exports its size.
func (s *Scheduler) ReportCacheStats(ctx context.Context) {
	if s.starCache == nil {
		return
	}
	stats := s.starCache.Stats()
	s.metrics.SetStarCacheEntries(stats.Entries)
	s.logger.InfoContext(ctx, "Star rating cache stats",
		attr.Int("entries", stats.Entries),
		attr.Int64("hits", stats.Hits),
		attr.Int64("misses", stats.Misses),
	)
}
