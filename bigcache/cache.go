package cache

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// ErrMiss is returned by Get when the key is absent or its entry has expired.
var ErrMiss = errors.New("cache miss")

type CacheInterface interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Stats() Stats
}

// Options bounds the cache by entry lifetime and total memory.
type Options struct {
	LifeWindow  time.Duration
	CleanWindow time.Duration
	MaxSizeMB   int
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

type Cache struct {
	bigCache *bigcache.BigCache
}

// NewCache creates a bounded in-memory cache. The background cleaner stops when ctx is done.
func NewCache(ctx context.Context, opts Options) (*Cache, error) {
	config := bigcache.DefaultConfig(opts.LifeWindow)
	config.Shards = 64
	config.MaxEntriesInWindow = 10_000
	config.MaxEntrySize = 64
	config.HardMaxCacheSize = opts.MaxSizeMB
	config.StatsEnabled = true
	config.Verbose = false
	if opts.CleanWindow > 0 {
		config.CleanWindow = opts.CleanWindow
	}

	bigCache, err := bigcache.New(ctx, config)
	if err != nil {
		return nil, err
	}
	return &Cache{bigCache: bigCache}, nil
}

func (c *Cache) Set(key string, value []byte) error {
	return c.bigCache.Set(key, value)
}

func (c *Cache) Get(key string) ([]byte, error) {
	v, err := c.bigCache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, ErrMiss
	}
	return v, err
}

func (c *Cache) Delete(key string) error {
	err := c.bigCache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (c *Cache) Stats() Stats {
	s := c.bigCache.Stats()
	return Stats{Entries: c.bigCache.Len(), Hits: s.Hits, Misses: s.Misses}
}

// Close stops the cleaner and releases memory.
func (c *Cache) Close() error {
	return c.bigCache.Close()
}
