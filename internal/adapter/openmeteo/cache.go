package openmeteo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/couchcryptid/activity-weather-insights/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedFetcher wraps a WeatherFetcher with an in-memory LRU cache. Only
// ranges that ended before today are cached, since the archive keeps filling
// in recent days.
type CachedFetcher struct {
	inner   domain.WeatherFetcher
	cache   *lruCache[[]domain.WeatherRecord]
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner domain.WeatherFetcher, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache[[]domain.WeatherRecord](maxEntries),
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchDaily(ctx context.Context, at domain.Coordinates, start, end time.Time) ([]domain.WeatherRecord, error) {
	key := fmt.Sprintf("%.4f,%.4f|%s|%s", at.Lat, at.Lon, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if records, ok := c.cache.get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return records, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	records, err := c.inner.FetchDaily(ctx, at, start, end)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && domain.DateOf(end).Before(domain.DateOf(c.clock.Now())) {
		c.cache.put(key, records)
	}
	return records, nil
}

// lruCache is a small thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) unlink(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
