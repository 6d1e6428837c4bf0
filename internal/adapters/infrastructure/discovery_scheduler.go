package infrastructure

import (
	"context"
	"sort"
	"time"

	"github.com/go-co-op/gocron"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

const defaultDiscoveryRetryInterval = 5 * time.Minute

// SourceLister exposes the data sources built by the registry
type SourceLister interface {
	Sources() map[string]ports.DataSource
}

// DiscoveryScheduler periodically restarts discovery for data sources that
// failed to initialize
type DiscoveryScheduler struct {
	scheduler *gocron.Scheduler
	sources   SourceLister
	interval  time.Duration
	timeout   time.Duration
	logger    ports.Logger
}

// DiscoverySchedulerParams holds dependencies for the discovery scheduler
type DiscoverySchedulerParams struct {
	Sources  SourceLister
	Interval time.Duration
	Timeout  time.Duration
	Logger   ports.Logger
}

// NewDiscoveryScheduler creates a new scheduler. Nothing runs until Start.
func NewDiscoveryScheduler(params DiscoverySchedulerParams) (*DiscoveryScheduler, error) {
	if params.Sources == nil {
		return nil, errors.NewValidationError("source lister is required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	interval := params.Interval
	if interval <= 0 {
		interval = defaultDiscoveryRetryInterval
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &DiscoveryScheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sources:   params.Sources,
		interval:  interval,
		timeout:   timeout,
		logger:    params.Logger,
	}, nil
}

// Start schedules the retry job and starts the underlying scheduler
func (s *DiscoveryScheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RetryFailed(ctx)
	})
	if err != nil {
		return errors.NewConfigurationError("failed to schedule discovery retry", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("Discovery retry scheduled", ports.F("interval", s.interval.String()))
	return nil
}

// Stop stops the scheduler and cancels any future jobs
func (s *DiscoveryScheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RetryFailed restarts discovery on every failed source and returns the ids
// it restarted
func (s *DiscoveryScheduler) RetryFailed(ctx context.Context) []string {
	sources := s.sources.Sources()

	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var restarted []string
	for _, id := range ids {
		source := sources[id]

		reporter, ok := source.(ports.StatusReporter)
		if !ok || reporter.Status().State != ports.SourceStateFailed {
			continue
		}
		rediscoverer, ok := source.(ports.Rediscoverer)
		if !ok {
			continue
		}

		if rediscoverer.Rediscover(ctx) {
			restarted = append(restarted, id)
		}
	}

	if len(restarted) > 0 {
		s.logger.Info("Restarted data source discovery",
			ports.F("series", restarted),
			ports.F("count", len(restarted)))
	}
	return restarted
}
