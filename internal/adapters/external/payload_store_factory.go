package external

import (
	"fmt"

	"solarviz.app/internal/config"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

type PayloadStoreFactory struct{}

func NewPayloadStoreFactory() *PayloadStoreFactory {
	return &PayloadStoreFactory{}
}

// CreatePayloadStore returns the configured store, or nil when payloads
// should only be cached in process
func (f *PayloadStoreFactory) CreatePayloadStore(cfg *config.CacheConfig) (ports.PayloadStore, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case config.CacheTypeNone:
		return nil, nil
	case config.CacheTypeMemory:
		return NewMemoryPayloadStore(), nil
	case config.CacheTypeRedis:
		store, err := NewRedisPayloadStore(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type.String()), nil)
	}
}
