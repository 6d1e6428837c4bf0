package external

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// DefaultPrefetchSteps is how many steps past the current instant are
// fetched ahead of time
const DefaultPrefetchSteps = 10

type cacheEntry struct {
	future *series.Future
	seq    uint64
}

type cacheOrderItem struct {
	key string
	seq uint64
}

// CachingSource wraps a data source with a timestamp-keyed cache of futures.
// There is at most one fetch in flight per key: concurrent requests and
// overlapping prefetch cycles join the existing future.
type CachingSource struct {
	seriesID      string
	inner         ports.DataSource
	prefetchSteps int
	maxEntries    int
	store         ports.PayloadStore
	storeTTL      time.Duration
	metrics       ports.SourceMetrics
	logger        ports.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []cacheOrderItem
	seq     uint64
}

// CachingSourceParams holds parameters for creating a caching decorator
type CachingSourceParams struct {
	SeriesID      string
	Inner         ports.DataSource
	PrefetchSteps int
	// MaxEntries bounds the cache; zero keeps every entry for the session
	MaxEntries int
	Store      ports.PayloadStore
	StoreTTL   time.Duration
	Metrics    ports.SourceMetrics
	Logger     ports.Logger
}

// NewCachingSource creates a new caching decorator
func NewCachingSource(params CachingSourceParams) (*CachingSource, error) {
	if params.Inner == nil {
		return nil, errors.NewConfigurationError("cached data source cannot be nil", nil)
	}
	if params.Logger == nil {
		return nil, errors.NewConfigurationError("logger cannot be nil", nil)
	}
	if params.MaxEntries < 0 {
		return nil, errors.NewConfigurationError("cache max entries cannot be negative", nil)
	}

	steps := params.PrefetchSteps
	if steps < 0 {
		steps = 0
	}

	metrics := params.Metrics
	if metrics == nil {
		metrics = nopSourceMetrics{}
	}

	ttl := params.StoreTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &CachingSource{
		seriesID:      params.SeriesID,
		inner:         params.Inner,
		prefetchSteps: steps,
		maxEntries:    params.MaxEntries,
		store:         params.Store,
		storeTTL:      ttl,
		metrics:       metrics,
		logger:        params.Logger,
		entries:       make(map[string]*cacheEntry),
	}, nil
}

// OnTimeChanged forwards the instant and schedules fetches for the next
// prefetch steps. Keys already cached are skipped. It never waits for a fetch.
func (c *CachingSource) OnTimeChanged(ctx context.Context, instant series.PlaybackInstant) {
	c.inner.OnTimeChanged(ctx, instant)

	if c.prefetchSteps == 0 || instant.StepSize.Validate() != nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	scheduled := 0
	for i := 1; i <= c.prefetchSteps; i++ {
		ts := instant.StepSize.AddTo(instant.Current, i)
		if _, started := c.lookupOrStart(detached, ts); started {
			scheduled++
		}
	}

	c.metrics.RecordPrefetch(c.seriesID, scheduled)
	if scheduled > 0 {
		c.logger.Debug("Prefetch scheduled",
			ports.F("series", c.seriesID),
			ports.F("from", series.CanonicalKey(instant.Current)),
			ports.F("scheduled", scheduled))
	}
}

// Get returns the cached future for timestamp, starting a fetch if none
// exists, and waits for it. Leaving early through ctx does not cancel the
// shared fetch.
func (c *CachingSource) Get(ctx context.Context, timestamp time.Time) (*series.Shape, error) {
	future, started := c.lookupOrStart(context.WithoutCancel(ctx), timestamp)
	if started {
		c.metrics.RecordCacheMiss(c.seriesID)
	} else {
		c.metrics.RecordCacheHit(c.seriesID)
	}
	return future.Await(ctx)
}

// Contains reports whether a future is cached for timestamp
func (c *CachingSource) Contains(timestamp time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[series.CanonicalKey(timestamp)]
	return ok
}

// Len returns the number of cached futures
func (c *CachingSource) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Status passes through the readiness of the wrapped source
func (c *CachingSource) Status() ports.SourceStatus {
	if reporter, ok := c.inner.(ports.StatusReporter); ok {
		return reporter.Status()
	}
	return ports.SourceStatus{State: ports.SourceStateReady}
}

// Rediscover passes through to the wrapped source
func (c *CachingSource) Rediscover(ctx context.Context) bool {
	if r, ok := c.inner.(ports.Rediscoverer); ok {
		return r.Rediscover(ctx)
	}
	return false
}

// Unwrap returns the wrapped source
func (c *CachingSource) Unwrap() ports.DataSource {
	return c.inner
}

// lookupOrStart returns the future for the key of ts and whether this call
// created it. The fetch runs for the key's whole second so cold and warm
// calls see the same timestamp.
func (c *CachingSource) lookupOrStart(ctx context.Context, ts time.Time) (*series.Future, bool) {
	ts = ts.UTC().Truncate(time.Second)
	key := series.CanonicalKey(ts)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return entry.future, false
	}

	future := series.NewFuture()
	c.seq++
	seq := c.seq
	c.entries[key] = &cacheEntry{future: future, seq: seq}
	c.order = append(c.order, cacheOrderItem{key: key, seq: seq})
	c.evictLocked()
	size := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetCacheEntries(c.seriesID, size)

	go c.fill(ctx, key, seq, ts, future)
	return future, true
}

func (c *CachingSource) fill(ctx context.Context, key string, seq uint64, ts time.Time, future *series.Future) {
	start := time.Now()
	shape, err := c.load(ctx, key, ts)
	c.metrics.RecordFetch(c.seriesID, time.Since(start), err)

	future.Resolve(shape, err)
	if err == nil {
		return
	}

	// A failed fetch must not poison the key
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && entry.seq == seq {
		delete(c.entries, key)
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetCacheEntries(c.seriesID, size)
	c.logger.Debug("Fetch failed, cache entry dropped",
		ports.F("series", c.seriesID),
		ports.F("key", key),
		ports.F("error", err))
}

// load consults the payload store before the wrapped source and fills the
// store after a successful fetch
func (c *CachingSource) load(ctx context.Context, key string, ts time.Time) (*series.Shape, error) {
	storeKey := c.storeKey(key)

	if c.store != nil {
		data, err := c.store.Get(ctx, storeKey)
		switch {
		case err == nil:
			shape, decodeErr := series.UnmarshalShape(data)
			if decodeErr == nil {
				return shape, nil
			}
			c.logger.Warn("Discarding undecodable stored payload",
				ports.F("series", c.seriesID), ports.F("key", key), ports.F("error", decodeErr))
		case !errors.IsNotFoundError(err):
			c.logger.Warn("Payload store lookup failed",
				ports.F("series", c.seriesID), ports.F("key", key), ports.F("error", err))
		}
	}

	shape, err := c.inner.Get(ctx, ts)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		data, err := json.Marshal(shape)
		if err == nil {
			err = c.store.Set(ctx, storeKey, data, c.storeTTL)
		}
		if err != nil {
			c.logger.Warn("Failed to store payload",
				ports.F("series", c.seriesID), ports.F("key", key), ports.F("error", err))
		}
	}
	return shape, nil
}

// evictLocked drops the oldest resolved entries while the cache is over its
// bound. In-flight entries are never evicted.
func (c *CachingSource) evictLocked() {
	if c.maxEntries == 0 || len(c.entries) <= c.maxEntries {
		if len(c.order) > 4*len(c.entries)+16 {
			c.compactOrderLocked()
		}
		return
	}

	kept := make([]cacheOrderItem, 0, len(c.order))
	for _, item := range c.order {
		entry, ok := c.entries[item.key]
		if !ok || entry.seq != item.seq {
			continue
		}
		if len(c.entries) > c.maxEntries && entry.future.Resolved() {
			delete(c.entries, item.key)
			continue
		}
		kept = append(kept, item)
	}
	c.order = kept
}

// compactOrderLocked removes order items whose entries are gone
func (c *CachingSource) compactOrderLocked() {
	kept := make([]cacheOrderItem, 0, len(c.entries))
	for _, item := range c.order {
		if entry, ok := c.entries[item.key]; ok && entry.seq == item.seq {
			kept = append(kept, item)
		}
	}
	c.order = kept
}

func (c *CachingSource) storeKey(key string) string {
	return "shape:" + c.seriesID + ":" + key
}

type nopSourceMetrics struct{}

func (nopSourceMetrics) RecordCacheHit(string) {}
func (nopSourceMetrics) RecordCacheMiss(string) {}
func (nopSourceMetrics) RecordPrefetch(string, int) {}
func (nopSourceMetrics) RecordFetch(string, time.Duration, error) {}
func (nopSourceMetrics) SetCacheEntries(string, int) {}
