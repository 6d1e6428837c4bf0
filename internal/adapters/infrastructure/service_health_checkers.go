package infrastructure

import (
	"context"

	"solarviz.app/internal/ports"
)

// Health status values reported by the checkers
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"
)

// SourceStatusLister reports the readiness of every series
type SourceStatusLister interface {
	Statuses() map[string]ports.SourceStatus
}

// BreakerReporter reports circuit breaker state per backend
type BreakerReporter interface {
	BreakerStates() map[string]string
}

// SourceHealthChecker reports data source readiness and breaker state
type SourceHealthChecker struct {
	sources  SourceStatusLister
	breakers BreakerReporter
}

// NewSourceHealthChecker creates a new data source health checker. breakers
// may be nil.
func NewSourceHealthChecker(sources SourceStatusLister, breakers BreakerReporter) *SourceHealthChecker {
	return &SourceHealthChecker{sources: sources, breakers: breakers}
}

// Check is healthy when every series is ready, degraded while some are
// loading or failed, and unhealthy when none is ready
func (s *SourceHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "sources",
		Details:   make(map[string]interface{}),
	}

	if s.sources == nil {
		status.Status = StatusUnhealthy
		status.Error = "no data source registry"
		return status
	}

	statuses := s.sources.Statuses()
	ready, failed := 0, 0
	for _, st := range statuses {
		switch st.State {
		case ports.SourceStateReady:
			ready++
		case ports.SourceStateFailed:
			failed++
		}
	}

	status.Details["series"] = statuses
	status.Details["ready"] = ready
	status.Details["failed"] = failed

	openBreakers := 0
	if s.breakers != nil {
		states := s.breakers.BreakerStates()
		status.Details["breakers"] = states
		for _, state := range states {
			if state == "open" {
				openBreakers++
			}
		}
	}

	switch {
	case len(statuses) == 0 || ready == 0:
		status.Status = StatusUnhealthy
	case ready < len(statuses) || openBreakers > 0:
		status.Status = StatusDegraded
	default:
		status.Status = StatusHealthy
	}
	return status
}

// Pinger is implemented by stores that can verify their connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// PayloadStoreHealthChecker reports the state of the shared payload store
type PayloadStoreHealthChecker struct {
	store     ports.PayloadStore
	cacheType string
}

// NewPayloadStoreHealthChecker creates a new payload store health checker.
// A nil store reports disabled.
func NewPayloadStoreHealthChecker(store ports.PayloadStore, cacheType string) *PayloadStoreHealthChecker {
	return &PayloadStoreHealthChecker{store: store, cacheType: cacheType}
}

func (p *PayloadStoreHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "payloadStore",
		Details: map[string]interface{}{
			"type": p.cacheType,
		},
	}

	if p.store == nil {
		status.Status = StatusDisabled
		return status
	}

	if pinger, ok := p.store.(Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			status.Status = StatusUnhealthy
			status.Error = err.Error()
			return status
		}
	}

	if metrics, ok := p.store.(ports.CacheMetrics); ok {
		stats := metrics.GetStats()
		status.Details["hits"] = stats.Hits
		status.Details["misses"] = stats.Misses
		status.Details["hitRatio"] = stats.HitRatio
	}

	status.Status = StatusHealthy
	return status
}
