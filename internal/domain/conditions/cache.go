package conditions

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/pkg/metrics"
)

// DefaultCacheTTL is how long a fleet snapshot is served before refreshing.
const DefaultCacheTTL = 5 * time.Minute

// Fleet is one aggregation result shared by every reader. Treat it as
// read-only.
type Fleet struct {
	Beaches     []beach.Beach
	GeneratedAt time.Time
}

// Refresher produces a fresh fleet from the reference beaches.
type Refresher interface {
	Aggregate(ctx context.Context, reference []beach.Beach) []beach.Beach
}

// Reference supplies the static beach list.
type Reference interface {
	All() []beach.Beach
}

// Cache is a single-slot, time-windowed memo of the last fleet.
type Cache struct {
	ttl       time.Duration
	reference Reference
	refresher Refresher
	metrics   *metrics.Metrics
	clock     clockwork.Clock
	logger    *slog.Logger

	mu         sync.Mutex
	fleet      *Fleet
	generation uint64
}

// NewCache builds an empty cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration, reference Reference, refresher Refresher, m *metrics.Metrics, clock clockwork.Clock, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:       ttl,
		reference: reference,
		refresher: refresher,
		metrics:   m,
		clock:     clock,
		logger:    logger.With("component", "conditions.cache"),
	}
}

// Get returns the cached fleet while it is younger than the TTL, otherwise
// aggregates a new one. The refresh runs outside the lock, so concurrent
// misses may both aggregate; the last one stored wins.
func (c *Cache) Get(ctx context.Context) *Fleet {
	c.mu.Lock()
	current, gen := c.fleet, c.generation
	c.mu.Unlock()

	if current != nil && c.clock.Since(current.GeneratedAt) < c.ttl {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return current
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	generatedAt := c.clock.Now()
	fresh := &Fleet{
		Beaches:     c.refresher.Aggregate(ctx, c.reference.All()),
		GeneratedAt: generatedAt,
	}

	c.mu.Lock()
	// An invalidation while aggregating means fresh may predate an admin write.
	if c.generation == gen {
		c.fleet = fresh
	}
	c.mu.Unlock()
	return fresh
}

// Beach returns a copy of one beach from the current fleet.
func (c *Cache) Beach(ctx context.Context, id string) (beach.Beach, bool) {
	fleet := c.Get(ctx)
	for _, b := range fleet.Beaches {
		if b.ID == id {
			return b.Clone(), true
		}
	}
	return beach.Beach{}, false
}

// Invalidate drops the cached fleet so the next Get aggregates.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.fleet = nil
	c.generation++
	c.mu.Unlock()
	c.metrics.CacheInvalidations.Inc()
	c.logger.Info("fleet cache invalidated")
}

// Warm fills the cache, typically at startup.
func (c *Cache) Warm(ctx context.Context) {
	fleet := c.Get(ctx)
	c.logger.Info("fleet cache warmed", "beaches", len(fleet.Beaches))
}
