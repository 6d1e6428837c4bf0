package external

import (
	"context"
	"time"

	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
)

// SourceLoggingDecorator decorates data sources with structured logging
type SourceLoggingDecorator struct {
	seriesID string
	backend  string
	source   ports.DataSource
	logger   ports.Logger
}

// NewSourceLoggingDecorator creates a new logging decorator for a data source
func NewSourceLoggingDecorator(seriesID, backend string, source ports.DataSource, logger ports.Logger) *SourceLoggingDecorator {
	return &SourceLoggingDecorator{
		seriesID: seriesID,
		backend:  backend,
		source:   source,
		logger:   logger,
	}
}

// OnTimeChanged logs the instant and delegates
func (d *SourceLoggingDecorator) OnTimeChanged(ctx context.Context, instant series.PlaybackInstant) {
	d.logger.Debug("Data source time changed",
		ports.F("series", d.seriesID),
		ports.F("backend", d.backend),
		ports.F("instant", series.CanonicalKey(instant.Current)),
		ports.F("event", "time_changed"))

	d.source.OnTimeChanged(ctx, instant)
}

// Get wraps the source call with structured logging
func (d *SourceLoggingDecorator) Get(ctx context.Context, timestamp time.Time) (*series.Shape, error) {
	key := series.CanonicalKey(timestamp)

	d.logger.Info("Data request started",
		ports.F("series", d.seriesID),
		ports.F("backend", d.backend),
		ports.F("key", key),
		ports.F("event", "request"))

	startTime := time.Now()

	shape, err := d.source.Get(ctx, timestamp)
	duration := time.Since(startTime)

	if err != nil {
		d.logger.Error("Data request failed",
			ports.F("series", d.seriesID),
			ports.F("backend", d.backend),
			ports.F("key", key),
			ports.F("event", "error"),
			ports.F("duration_ms", duration.Milliseconds()),
			ports.F("error", err.Error()))
		return nil, err
	}

	d.logger.Info("Data request completed",
		ports.F("series", d.seriesID),
		ports.F("backend", d.backend),
		ports.F("key", key),
		ports.F("event", "response"),
		ports.F("duration_ms", duration.Milliseconds()),
		ports.F("features", len(shape.Features)))

	return shape, nil
}

// Status passes through the readiness of the wrapped source
func (d *SourceLoggingDecorator) Status() ports.SourceStatus {
	if reporter, ok := d.source.(ports.StatusReporter); ok {
		return reporter.Status()
	}
	return ports.SourceStatus{State: ports.SourceStateReady, Backend: d.backend}
}

// Rediscover passes through to the wrapped source
func (d *SourceLoggingDecorator) Rediscover(ctx context.Context) bool {
	if r, ok := d.source.(ports.Rediscoverer); ok {
		started := r.Rediscover(ctx)
		if started {
			d.logger.Info("Data source discovery restarted",
				ports.F("series", d.seriesID),
				ports.F("backend", d.backend))
		}
		return started
	}
	return false
}

// Unwrap returns the wrapped source
func (d *SourceLoggingDecorator) Unwrap() ports.DataSource {
	return d.source
}
