package infrastructure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "solarviz"

// SourceMetricsCollector implements the SourceMetrics port on Prometheus
type SourceMetricsCollector struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	prefetched    *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheEntries  *prometheus.GaugeVec
}

// NewSourceMetricsCollector registers the data source metrics on reg
func NewSourceMetricsCollector(reg prometheus.Registerer) *SourceMetricsCollector {
	factory := promauto.With(reg)

	return &SourceMetricsCollector{
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "source_cache_hits_total",
				Help:      "The total number of requests served from an existing future",
			},
			[]string{"series"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "source_cache_misses_total",
				Help:      "The total number of requests that started a fetch",
			},
			[]string{"series"},
		),
		prefetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "source_prefetch_scheduled_total",
				Help:      "The total number of speculative fetches scheduled",
			},
			[]string{"series"},
		),
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "source_fetches_total",
				Help:      "The total number of backend fetches by result",
			},
			[]string{"series", "result"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "source_fetch_duration_seconds",
				Help:      "Backend fetch duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"series"},
		),
		cacheEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "source_cache_entries",
				Help:      "Futures currently held per series",
			},
			[]string{"series"},
		),
	}
}

func (m *SourceMetricsCollector) RecordCacheHit(seriesID string) {
	m.cacheHits.WithLabelValues(seriesID).Inc()
}

func (m *SourceMetricsCollector) RecordCacheMiss(seriesID string) {
	m.cacheMisses.WithLabelValues(seriesID).Inc()
}

func (m *SourceMetricsCollector) RecordPrefetch(seriesID string, scheduled int) {
	if scheduled <= 0 {
		return
	}
	m.prefetched.WithLabelValues(seriesID).Add(float64(scheduled))
}

func (m *SourceMetricsCollector) RecordFetch(seriesID string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(seriesID, result).Inc()
	m.fetchDuration.WithLabelValues(seriesID).Observe(duration.Seconds())
}

func (m *SourceMetricsCollector) SetCacheEntries(seriesID string, entries int) {
	m.cacheEntries.WithLabelValues(seriesID).Set(float64(entries))
}
