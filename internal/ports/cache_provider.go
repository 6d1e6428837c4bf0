package ports

import (
	"context"
	"time"
)

// PayloadStore defines the contract for a byte-level store of resolved
// payloads shared between processes
type PayloadStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// CacheStats represents cache performance metrics
type CacheStats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	TotalOps    int64     `json:"totalOps"`
	HitRatio    float64   `json:"hitRatio"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// CacheMetrics defines the contract for cache performance tracking
type CacheMetrics interface {
	GetStats() CacheStats
	RecordHit()
	RecordMiss()
	RecordOperation(operation string, duration time.Duration)
}

// SourceMetrics defines the contract for data source instrumentation
type SourceMetrics interface {
	RecordCacheHit(seriesID string)
	RecordCacheMiss(seriesID string)
	RecordPrefetch(seriesID string, scheduled int)
	RecordFetch(seriesID string, duration time.Duration, err error)
	SetCacheEntries(seriesID string, entries int)
}
