package external

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"solarviz.app/internal/config"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// redisKeyPrefix namespaces payload keys so Clear leaves other data alone
const redisKeyPrefix = "solarviz:"

// RedisPayloadStore implements the PayloadStore port using Redis so resolved
// shapes survive restarts and are shared between replicas
type RedisPayloadStore struct {
	client *redis.Client
	stats  storeStats
}

// NewRedisPayloadStore connects to Redis and verifies the connection
func NewRedisPayloadStore(config *config.RedisConfig) (*RedisPayloadStore, error) {
	if config == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  time.Duration(config.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewBackendError("failed to connect to Redis", err)
	}

	return &RedisPayloadStore{
		client: client,
	}, nil
}

// Get retrieves a stored payload
func (r *RedisPayloadStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("payload key cannot be empty")
	}

	val, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			r.stats.misses.Add(1)
			return nil, errors.NewNotFoundError("payload not stored")
		}
		return nil, errors.NewBackendError("redis get operation failed", err)
	}

	r.stats.hits.Add(1)
	return val, nil
}

// Set stores a payload with TTL
func (r *RedisPayloadStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("payload key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("payload cannot be nil")
	}
	if ttl <= 0 {
		return errors.NewValidationError("payload TTL must be positive")
	}

	if err := r.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err(); err != nil {
		return errors.NewBackendError("redis set operation failed", err)
	}

	return nil
}

// Delete removes a stored payload
func (r *RedisPayloadStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("payload key cannot be empty")
	}

	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return errors.NewBackendError("redis delete operation failed", err)
	}

	return nil
}

// Exists checks if a payload is stored
func (r *RedisPayloadStore) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.NewValidationError("payload key cannot be empty")
	}

	count, err := r.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, errors.NewBackendError("redis exists operation failed", err)
	}

	return count > 0, nil
}

// Clear removes every payload key
func (r *RedisPayloadStore) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 500).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return errors.NewBackendError("redis clear operation failed", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.NewBackendError("redis clear operation failed", err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return errors.NewBackendError("redis clear operation failed", err)
		}
	}

	return nil
}

// GetStats returns store statistics
func (r *RedisPayloadStore) GetStats() ports.CacheStats {
	return r.stats.snapshot()
}

func (r *RedisPayloadStore) RecordHit() {
	r.stats.hits.Add(1)
}

func (r *RedisPayloadStore) RecordMiss() {
	r.stats.misses.Add(1)
}

func (r *RedisPayloadStore) RecordOperation(operation string, duration time.Duration) {}

// Close closes the Redis client connection
func (r *RedisPayloadStore) Close() error {
	if err := r.client.Close(); err != nil {
		return errors.NewBackendError("failed to close Redis connection", err)
	}
	return nil
}

// Ping checks if Redis connection is alive
func (r *RedisPayloadStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.NewBackendError("Redis ping failed", err)
	}
	return nil
}
