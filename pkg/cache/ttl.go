// Package cache provides a small mutex-guarded TTL cache.
//
// Expired entries are treated exactly like absent ones and are overwritten on
// the next Put; there is no background eviction. Callers with unbounded key
// spaces should call Purge periodically.
package cache

import (
	"sync"
	"time"

	"flightsched-service/pkg/clock"
)

// Cache is the get/put contract consumers depend on.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	Delete(key K)
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a Cache whose entries are valid for a fixed duration from insertion.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	ttl     time.Duration
	clock   clock.Clock
}

// NewTTL creates a cache with the given ttl. A nil clock means clock.Real().
func NewTTL[K comparable, V any](ttl time.Duration, clk clock.Clock) *TTL[K, V] {
	if clk == nil {
		clk = clock.Real()
	}

	return &TTL[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		clock:   clk,
	}
}

func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}

	return e.value, true
}

func (c *TTL[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, storedAt: c.clock.Now()}
}

func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// DeleteFunc removes every key for which match returns true and reports how many were removed.
func (c *TTL[K, V]) DeleteFunc(match func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if match(k) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Purge drops expired entries.
func (c *TTL[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len counts stored entries, expired ones included.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[K, V]) expired(e entry[V]) bool {
	return c.clock.Now().Sub(e.storedAt) >= c.ttl
}

var _ Cache[string, int] = (*TTL[string, int])(nil)
