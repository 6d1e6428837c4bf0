// Package catalog holds the series catalog and routes every data request to
// the data source configured for the series.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// Registry holds the immutable catalog and one data source per entry
type Registry struct {
	definitions []series.Definition
	byID        map[string]series.Definition
	interval    series.Interval
	factory     ports.SourceFactory
	logger      ports.Logger

	once      sync.Once
	sources   map[string]ports.DataSource
	buildErrs map[string]error
}

// RegistryDependencies holds everything the registry needs
type RegistryDependencies struct {
	Definitions []series.Definition
	Interval    series.Interval
	Factory     ports.SourceFactory
	Logger      ports.Logger
}

func NewRegistry(deps RegistryDependencies) (*Registry, error) {
	if deps.Factory == nil {
		return nil, errors.NewValidationError("source factory is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if err := series.ValidateCatalog(deps.Definitions); err != nil {
		return nil, errors.NewConfigurationError("invalid series catalog", err)
	}
	if err := deps.Interval.Validate(); err != nil {
		return nil, errors.NewConfigurationError("invalid data interval", err)
	}

	defs := make([]series.Definition, len(deps.Definitions))
	copy(defs, deps.Definitions)

	byID := make(map[string]series.Definition, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}

	return &Registry{
		definitions: defs,
		byID:        byID,
		interval:    deps.Interval,
		factory:     deps.Factory,
		logger:      deps.Logger,
	}, nil
}

// ensureSources builds one data source per catalog entry. It runs once per
// registry no matter how many goroutines race into it.
func (r *Registry) ensureSources() {
	r.once.Do(func() {
		sources := make(map[string]ports.DataSource, len(r.definitions))
		buildErrs := make(map[string]error)

		for _, def := range r.definitions {
			source, err := r.factory.CreateSource(def)
			if err != nil {
				r.logger.Error("Failed to create data source",
					ports.F("series", def.ID),
					ports.F("backend", string(def.Type)),
					ports.F("error", err))
				buildErrs[def.ID] = err
				continue
			}
			sources[def.ID] = source
		}

		r.sources = sources
		r.buildErrs = buildErrs
		r.logger.Info("Data sources created",
			ports.F("created", len(sources)),
			ports.F("failed", len(buildErrs)))
	})
}

// ListSeries returns the catalog
func (r *Registry) ListSeries() []series.Definition {
	r.ensureSources()

	out := make([]series.Definition, len(r.definitions))
	copy(out, r.definitions)
	return out
}

// SeriesByID returns one catalog entry
func (r *Registry) SeriesByID(id string) (series.Definition, error) {
	r.ensureSources()

	def, ok := r.byID[id]
	if !ok {
		return series.Definition{}, errors.NewUnknownSeriesError(id)
	}
	return def, nil
}

// DataInterval returns the fixed range of available data
func (r *Registry) DataInterval() series.Interval {
	return r.interval
}

// Get fetches the shape of one series at one instant
func (r *Registry) Get(ctx context.Context, seriesID string, timestamp time.Time) (*series.Shape, error) {
	r.ensureSources()

	source, ok := r.sources[seriesID]
	if !ok {
		if buildErr, failed := r.buildErrs[seriesID]; failed {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("data source for %q is unavailable", seriesID), buildErr)
		}
		return nil, errors.NewUnknownSeriesError(seriesID)
	}

	if !r.interval.Contains(timestamp) {
		return nil, errors.NewTimeOutOfRangeError(fmt.Sprintf(
			"time %s is outside the available data interval", series.CanonicalKey(timestamp)))
	}

	shape, err := source.Get(ctx, timestamp)
	if err != nil {
		return nil, fmt.Errorf("get series %s at %s: %w", seriesID, series.CanonicalKey(timestamp), err)
	}
	return shape, nil
}

// NotifyTimeChanged forwards an instant to every data source
func (r *Registry) NotifyTimeChanged(ctx context.Context, instant series.PlaybackInstant) {
	r.ensureSources()

	r.logger.Debug("Time changed",
		ports.F("instant", series.CanonicalKey(instant.Current)),
		ports.F("step", instant.StepSize.String()))

	for _, source := range r.sources {
		source.OnTimeChanged(ctx, instant)
	}
}

// Follow forwards every instant received on the channel until the channel
// closes or ctx ends
func (r *Registry) Follow(ctx context.Context, instants <-chan series.PlaybackInstant) {
	for {
		select {
		case <-ctx.Done():
			return
		case instant, ok := <-instants:
			if !ok {
				return
			}
			r.NotifyTimeChanged(ctx, instant)
		}
	}
}

// Sources returns the constructed data sources keyed by series id
func (r *Registry) Sources() map[string]ports.DataSource {
	r.ensureSources()

	out := make(map[string]ports.DataSource, len(r.sources))
	for id, source := range r.sources {
		out[id] = source
	}
	return out
}

// Statuses reports the readiness of every series
func (r *Registry) Statuses() map[string]ports.SourceStatus {
	r.ensureSources()

	statuses := make(map[string]ports.SourceStatus, len(r.definitions))
	for _, def := range r.definitions {
		if err, failed := r.buildErrs[def.ID]; failed {
			statuses[def.ID] = ports.SourceStatus{
				State:   ports.SourceStateFailed,
				Backend: string(def.Type),
				Detail:  err.Error(),
			}
			continue
		}
		if reporter, ok := r.sources[def.ID].(ports.StatusReporter); ok {
			status := reporter.Status()
			if status.Backend == "" {
				status.Backend = string(def.Type)
			}
			statuses[def.ID] = status
			continue
		}
		statuses[def.ID] = ports.SourceStatus{State: ports.SourceStateReady, Backend: string(def.Type)}
	}
	return statuses
}
