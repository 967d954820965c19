package scores

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	cache "github.com/Black-And-White-Club/discord-osu-bot/bigcache"
)

// StarCache memoizes mod-adjusted star ratings. Ratings never change upstream
// for a given beatmap and mod set, so entries only leave through the cache's
// lifetime and size bounds.
type StarCache struct {
	store cache.CacheInterface
}

func NewStarCache(store cache.CacheInterface) *StarCache {
	return &StarCache{store: store}
}

// Get returns the memoized rating for key.
func (c *StarCache) Get(key string) (float64, bool) {
	if c == nil || c.store == nil {
		return 0, false
	}
	raw, err := c.store.Get(key)
	if err != nil || len(raw) != 8 {
		return 0, false
	}
	return math.Float64frombits(binary.BigEndian.Uint64(raw)), true
}

// Set memoizes rating under key. Write failures only cost a future lookup.
func (c *StarCache) Set(key string, rating float64) {
	if c == nil || c.store == nil {
		return
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(rating))
	_ = c.store.Set(key, buf[:])
}

// StarKey identifies a beatmap played with a mod set, independent of mod order.
func StarKey(beatmapID int64, mods api.Mods) string {
	return fmt.Sprintf("%d-%s", beatmapID, mods.Key())
}
