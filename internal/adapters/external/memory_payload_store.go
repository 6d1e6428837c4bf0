package external

import (
	"context"
	"sync"
	"time"

	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// MemoryPayloadStore keeps encoded shapes in process memory
type MemoryPayloadStore struct {
	data  map[string]memoryPayload
	mutex sync.RWMutex
	stats storeStats
}

type memoryPayload struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryPayloadStore() *MemoryPayloadStore {
	return &MemoryPayloadStore{
		data: make(map[string]memoryPayload),
	}
}

func (c *MemoryPayloadStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("payload key cannot be empty")
	}

	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists || time.Now().After(item.expiresAt) {
		c.stats.misses.Add(1)
		return nil, errors.NewNotFoundError("payload not stored")
	}

	c.stats.hits.Add(1)
	return item.data, nil
}

func (c *MemoryPayloadStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("payload key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("payload cannot be nil")
	}
	if ttl <= 0 {
		return errors.NewValidationError("payload TTL must be positive")
	}

	now := time.Now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = memoryPayload{
		data:      value,
		expiresAt: now.Add(ttl),
	}
	c.sweepLocked(now)

	return nil
}

func (c *MemoryPayloadStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("payload key cannot be empty")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

func (c *MemoryPayloadStore) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.NewValidationError("payload key cannot be empty")
	}

	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists {
		return false, nil
	}

	return !time.Now().After(item.expiresAt), nil
}

func (c *MemoryPayloadStore) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]memoryPayload)
	return nil
}

// Len returns the number of stored payloads, expired ones included
func (c *MemoryPayloadStore) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *MemoryPayloadStore) GetStats() ports.CacheStats {
	return c.stats.snapshot()
}

func (c *MemoryPayloadStore) RecordHit() {
	c.stats.hits.Add(1)
}

func (c *MemoryPayloadStore) RecordMiss() {
	c.stats.misses.Add(1)
}

func (c *MemoryPayloadStore) RecordOperation(operation string, duration time.Duration) {}

// sweepLocked drops expired payloads once the map has grown past a power of two
func (c *MemoryPayloadStore) sweepLocked(now time.Time) {
	n := len(c.data)
	if n < 1024 || n&(n-1) != 0 {
		return
	}
	for key, item := range c.data {
		if now.After(item.expiresAt) {
			delete(c.data, key)
		}
	}
}
