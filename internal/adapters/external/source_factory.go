package external

import (
	"fmt"
	"net/http"
	"sync"

	"solarviz.app/internal/config"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// SourceFactory builds the adapter stack for a catalog entry: the backend
// adapter, the caching decorator for backends that serve arbitrary
// timestamps, and the logging decorator on top
type SourceFactory struct {
	config     *config.Config
	store      ports.PayloadStore
	metrics    ports.SourceMetrics
	logger     ports.Logger
	httpClient *http.Client

	mu      sync.Mutex
	clients map[series.BackendType]*BackendClient
}

// SourceFactoryParams holds dependencies for creating the source factory
type SourceFactoryParams struct {
	Config  *config.Config
	Store   ports.PayloadStore
	Metrics ports.SourceMetrics
	Logger  ports.Logger
	// HTTPClient overrides the per-backend client, mainly for tests
	HTTPClient *http.Client
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(params SourceFactoryParams) (*SourceFactory, error) {
	if params.Config == nil {
		return nil, errors.NewConfigurationError("config cannot be nil", nil)
	}
	if params.Logger == nil {
		return nil, errors.NewConfigurationError("logger cannot be nil", nil)
	}

	return &SourceFactory{
		config:     params.Config,
		store:      params.Store,
		metrics:    params.Metrics,
		logger:     params.Logger,
		httpClient: params.HTTPClient,
		clients:    make(map[series.BackendType]*BackendClient),
	}, nil
}

// CreateSource implements ports.SourceFactory
func (f *SourceFactory) CreateSource(def series.Definition) (ports.DataSource, error) {
	var (
		source ports.DataSource
		err    error
	)

	switch def.Type {
	case series.BackendFlatStore:
		source, err = f.createFlatStore(def)
	case series.BackendHSDS:
		source, err = f.createHSDS(def)
	case series.BackendCustomAPI:
		source, err = f.createCustomAPI(def)
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported backend type: %s", def.Type), nil)
	}
	if err != nil {
		return nil, err
	}

	if f.config.Logging.SourceLogging {
		source = NewSourceLoggingDecorator(def.ID, string(def.Type), source, f.logger)
	}
	return source, nil
}

// BreakerStates reports the circuit breaker state of every backend client
func (f *SourceFactory) BreakerStates() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	states := make(map[string]string, len(f.clients))
	for backend, client := range f.clients {
		states[string(backend)] = client.State()
	}
	return states
}

func (f *SourceFactory) createFlatStore(def series.Definition) (ports.DataSource, error) {
	inner, err := NewFlatStoreSource(FlatStoreSourceParams{
		SeriesID:  def.ID,
		URLPrefix: def.URL,
		StepSize:  def.StepSize,
		Alignment: AlignmentPolicy(f.config.FlatStore.Alignment),
		Fetcher:   f.client(def.Type),
		Logger:    f.logger,
	})
	if err != nil {
		return nil, err
	}
	return f.cached(def, inner)
}

func (f *SourceFactory) createHSDS(def series.Definition) (ports.DataSource, error) {
	cfg := f.config.HSDS
	inner, err := NewHSDSSource(HSDSSourceParams{
		SeriesID:            def.ID,
		BaseURL:             def.URL,
		Domain:              cfg.Domain,
		APIKey:              cfg.APIKey,
		Variable:            cfg.Variable,
		CoordinatesVariable: cfg.CoordinatesVariable,
		Epoch:               cfg.Epoch,
		XDomain:             [2]int{cfg.XStart, cfg.XEnd},
		YDomain:             [2]int{cfg.YStart, cfg.YEnd},
		Divisor:             cfg.Divisor,
		StepSize:            def.StepSize,
		Fetcher:             f.client(def.Type),
		Logger:              f.logger,
	})
	if err != nil {
		return nil, err
	}
	return f.cached(def, inner)
}

// createCustomAPI leaves the source bare: it keeps its own futures and only
// serves timestamps announced by a window query
func (f *SourceFactory) createCustomAPI(def series.Definition) (ports.DataSource, error) {
	source, err := NewCustomAPISource(CustomAPISourceParams{
		SeriesID:  def.ID,
		Host:      def.URL,
		Lookahead: f.config.CustomAPI.Lookahead,
		Fetcher:   f.client(def.Type),
		Logger:    f.logger,
	})
	if err != nil {
		return nil, err
	}
	return source, nil
}

func (f *SourceFactory) cached(def series.Definition, inner ports.DataSource) (ports.DataSource, error) {
	source, err := NewCachingSource(CachingSourceParams{
		SeriesID:      def.ID,
		Inner:         inner,
		PrefetchSteps: f.config.Cache.PrefetchSteps,
		MaxEntries:    f.config.Cache.MaxEntries,
		Store:         f.store,
		StoreTTL:      f.config.Cache.TTL,
		Metrics:       f.metrics,
		Logger:        f.logger,
	})
	if err != nil {
		return nil, err
	}
	return source, nil
}

// client returns the shared client of a backend so every series on it trips
// the same breaker
func (f *SourceFactory) client(backend series.BackendType) *BackendClient {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[backend]; ok {
		return client
	}

	client := NewBackendClient(BackendClientParams{
		Name:           string(backend),
		Timeout:        f.config.Backend.Timeout,
		MaxFailures:    f.config.Backend.MaxFailures,
		BreakerTimeout: f.config.Backend.BreakerTimeout,
		HTTPClient:     f.httpClient,
		Logger:         f.logger,
	})
	f.clients[backend] = client
	return client
}
