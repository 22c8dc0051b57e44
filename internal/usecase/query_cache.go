package usecase

import (
	"fmt"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/pkg/cache"
	"flightsched-service/pkg/logger"
	"flightsched-service/pkg/metrics"
	"flightsched-service/pkg/utils"
)

// QueryCache fronts route/month reads. Entries go stale after the cache TTL;
// staleness within that window is accepted.
type QueryCache struct {
	cache   cache.Cache[string, []*entity.FlightSchedule]
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewQueryCache wraps a key/value cache
func NewQueryCache(c cache.Cache[string, []*entity.FlightSchedule], logger logger.Logger, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		cache:   c,
		logger:  logger,
		metrics: m,
	}
}

// MonthKey renders "route|year|month"
func MonthKey(route string, year int, month time.Month) string {
	return fmt.Sprintf("%s|%d|%d", route, year, int(month))
}

// Get returns the cached month or false on a miss
func (c *QueryCache) Get(route string, year int, month time.Month) ([]*entity.FlightSchedule, bool) {
	key := MonthKey(route, year, month)
	v, ok := c.cache.Get(key)
	if ok {
		c.metrics.CacheHits.Inc()
		c.logger.Debug("Month cache hit", "key", key)
	} else {
		c.metrics.CacheMisses.Inc()
		c.logger.Debug("Month cache miss", "key", key)
	}
	return v, ok
}

// Put stores a sorted month result
func (c *QueryCache) Put(route string, year int, month time.Month, schedules []*entity.FlightSchedule) {
	c.cache.Put(MonthKey(route, year, month), schedules)
}

// Invalidate drops the months touched by newly written shards
func (c *QueryCache) Invalidate(keys []entity.ShardKey) {
	done := make(map[string]struct{})
	for _, k := range keys {
		d, err := time.Parse(utils.DATE_LAYOUT, k.Date)
		if err != nil {
			continue
		}
		mk := MonthKey(k.Route, d.Year(), d.Month())
		if _, ok := done[mk]; ok {
			continue
		}
		done[mk] = struct{}{}
		c.cache.Delete(mk)
	}
}
