package external

import (
	"sync/atomic"
	"time"

	"solarviz.app/internal/ports"
)

// storeStats counts payload store hits and misses
type storeStats struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (s *storeStats) snapshot() ports.CacheStats {
	hits := s.hits.Load()
	misses := s.misses.Load()

	total := hits + misses
	hitRatio := float64(0)
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return ports.CacheStats{
		Hits:        hits,
		Misses:      misses,
		TotalOps:    total,
		HitRatio:    hitRatio,
		LastUpdated: time.Now(),
	}
}
