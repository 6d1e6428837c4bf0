package ports

import (
	"context"
	"time"

	"solarviz.app/internal/core/series"
)

// DataSource defines the contract for fetching one instant of a series.
// OnTimeChanged must not block on the network; it is the hook for
// speculative prefetch. Get blocks only the calling goroutine.
type DataSource interface {
	OnTimeChanged(ctx context.Context, instant series.PlaybackInstant)
	Get(ctx context.Context, timestamp time.Time) (*series.Shape, error)
}

// SourceFactory builds the data source serving a catalog entry
type SourceFactory interface {
	CreateSource(def series.Definition) (DataSource, error)
}

// SourceFactoryFunc adapts a function to SourceFactory
type SourceFactoryFunc func(def series.Definition) (DataSource, error)

// CreateSource calls f(def)
func (f SourceFactoryFunc) CreateSource(def series.Definition) (DataSource, error) {
	return f(def)
}

// SourceState is the readiness of a data source
type SourceState string

const (
	SourceStateReady    SourceState = "ready"
	SourceStateLoading  SourceState = "loading"
	SourceStateFailed   SourceState = "failed"
	SourceStateDisabled SourceState = "disabled"
)

// SourceStatus describes a data source for health reporting
type SourceStatus struct {
	State   SourceState `json:"state"`
	Backend string      `json:"backend"`
	Detail  string      `json:"detail,omitempty"`
}

// StatusReporter is implemented by data sources that can report readiness
type StatusReporter interface {
	Status() SourceStatus
}

// Rediscoverer is implemented by data sources whose startup discovery can be
// retried after a failure
type Rediscoverer interface {
	Rediscover(ctx context.Context) bool
}

// PlaybackPublisher defines the contract for broadcasting playback instants
type PlaybackPublisher interface {
	Subscribe(buffer int) (<-chan series.PlaybackInstant, func())
}
