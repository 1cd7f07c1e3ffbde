package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/quantoid/tides/internal/models"
)

// forecastEntry wraps a cached forecast with its expiry.
type forecastEntry struct {
	data      *models.Forecast
	expiresAt time.Time
}

// ForecastCache is an in-memory LRU cache for computed forecasts with a
// fixed TTL. Provider data only changes daily, so one render can serve many
// page views. Nothing is ever persisted.
type ForecastCache struct {
	lru    *lru.Cache[string, *forecastEntry]
	ttl    time.Duration
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewForecastCache(size int, ttl time.Duration) (*ForecastCache, error) {
	lruCache, err := lru.New[string, *forecastEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}
	return &ForecastCache{
		lru: lruCache,
		ttl: ttl,
	}, nil
}

// Key builds the cache key for a forecast request.
func Key(locationID int, start time.Time, days int) string {
	return fmt.Sprintf("%d:%s:%d", locationID, start.Format("2006-01-02"), days)
}

func (c *ForecastCache) Get(key string) (*models.Forecast, bool) {
	if entry, ok := c.lru.Get(key); ok {
		if time.Now().Before(entry.expiresAt) {
			c.hits.Add(1)
			return entry.data, true
		}
		// Entry expired, remove it
		c.lru.Remove(key)
	}
	c.misses.Add(1)
	return nil, false
}

func (c *ForecastCache) Save(key string, forecast *models.Forecast) {
	c.lru.Add(key, &forecastEntry{
		data:      forecast,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Stats returns hit and miss counters for observability.
func (c *ForecastCache) Stats() map[string]uint64 {
	return map[string]uint64{
		"hits":   c.hits.Load(),
		"misses": c.misses.Load(),
	}
}

// Clear removes all entries.
func (c *ForecastCache) Clear() {
	c.lru.Purge()
}
