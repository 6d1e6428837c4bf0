package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"solarviz.app/internal/adapters/api"
	"solarviz.app/internal/adapters/infrastructure"
	"solarviz.app/internal/config"
	"solarviz.app/internal/core/catalog"
	"solarviz.app/internal/core/playback"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
)

// followBuffer is the queue between the session and the registry. Only the
// latest instant matters to prefetch so a short queue suffices.
const followBuffer = 4

type Application struct {
	config *config.Config
	deps   *DependencyContainer

	// Core
	registry *catalog.Registry
	session  *playback.Session
	clock    *playback.Clock

	// Adapters
	discovery   *infrastructure.DiscoveryScheduler
	httpAdapter *api.HTTPServerAdapter
	httpServer  *http.Server
	router      *gin.Engine

	// Infrastructure
	ports *ports.ApplicationPorts

	stopFollow context.CancelFunc
	followDone chan struct{}
	stopOnce   sync.Once
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	deps, err := NewDependencyContainer(cfg, DependencyOptions{})
	if err != nil {
		return nil, fmt.Errorf("create dependency container: %w", err)
	}

	return NewApplicationWithDependencies(cfg, deps)
}

// NewApplicationWithDependencies creates an application with provided dependencies (for testing)
func NewApplicationWithDependencies(cfg *config.Config, deps *DependencyContainer) (*Application, error) {
	app := &Application{
		config: cfg,
		deps:   deps,
		ports:  deps.ApplicationPorts(),
	}

	if err := app.initializeCore(); err != nil {
		return nil, fmt.Errorf("initialize core: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializeCore() error {
	slog.Info("Initializing core...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	defs, err := a.deps.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	registry, err := catalog.NewRegistry(catalog.RegistryDependencies{
		Definitions: defs,
		Interval:    a.config.Catalog.Interval(),
		Factory:     a.ports.SourceFactory,
		Logger:      a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create registry: %w", err)
	}
	a.registry = registry

	step := a.config.Playback.StepSize
	session, err := playback.NewSession(series.PlaybackInstant{
		Current:  step.Floor(a.config.Playback.InitialTime),
		StepSize: step,
	}, a.ports.Logger)
	if err != nil {
		return fmt.Errorf("create playback session: %w", err)
	}
	if id := a.config.Playback.InitialSeries; id != "" {
		def, err := registry.SeriesByID(id)
		if err != nil {
			slog.Warn("Initial series is not in the catalog", "series", id)
		} else {
			session.SelectSeries(def)
		}
	}
	a.session = session

	clock, err := playback.NewClock(a.config.Playback.TickInterval, session.Instant, session.Set, a.ports.Logger,
		playback.WithAdvance(session.Advance))
	if err != nil {
		return fmt.Errorf("create playback clock: %w", err)
	}
	a.clock = clock

	slog.Info("Core initialized successfully", "series", len(defs))
	return nil
}

func (a *Application) initializeAdapters() error {
	slog.Info("Initializing adapters...")

	discovery, err := infrastructure.NewDiscoveryScheduler(infrastructure.DiscoverySchedulerParams{
		Sources:  a.registry,
		Interval: a.config.HSDS.RetryInterval,
		Timeout:  a.config.Backend.Timeout,
		Logger:   a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create discovery scheduler: %w", err)
	}
	a.discovery = discovery

	checkers := map[string]ports.HealthChecker{
		"sources":      infrastructure.NewSourceHealthChecker(a.registry, a.deps.SourceFactory()),
		"payloadStore": infrastructure.NewPayloadStoreHealthChecker(a.ports.PayloadStore, a.config.Cache.Type.String()),
	}
	if db := a.deps.Database(); db != nil {
		checkers["database"] = infrastructure.NewCatalogDatabaseHealthChecker(db, a.ports.SeriesRepository)
	}
	systemHealthChecker := infrastructure.NewSystemHealthChecker(checkers)

	httpAdapter, err := api.NewHTTPServerAdapter(api.ServerOptions{
		Config: api.ServerConfig{
			Port:           a.config.Server.Port,
			AllowedOrigins: a.config.Server.AllowedOrigins,
		},
		Catalog:             a.registry,
		Session:             a.session,
		Clock:               a.clock,
		SystemHealthChecker: systemHealthChecker,
		MetricsHandler:      a.deps.MetricsHandler(),
		Logger:              a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}
	a.httpAdapter = httpAdapter
	a.router = httpAdapter.GetRouter()

	a.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:     httpAdapter.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	slog.Info("Adapters initialized successfully")
	return nil
}

// StartBackground wires the session to the registry, primes the sources
// with the initial instant and starts the scheduled jobs
func (a *Application) StartBackground(ctx context.Context) error {
	followCtx, cancel := context.WithCancel(ctx)
	instants, unsubscribe := a.session.Subscribe(followBuffer)
	done := make(chan struct{})

	a.stopFollow = func() {
		cancel()
		unsubscribe()
	}
	a.followDone = done

	go func() {
		defer close(done)
		a.registry.Follow(followCtx, instants)
	}()

	a.registry.NotifyTimeChanged(ctx, a.session.Instant())

	if err := a.discovery.Start(); err != nil {
		return err
	}

	if a.config.Playback.Autostart {
		a.clock.Start()
	}
	return nil
}

func (a *Application) Start(ctx context.Context) error {
	slog.Info("Starting application...")

	if err := a.StartBackground(ctx); err != nil {
		return fmt.Errorf("start background jobs: %w", err)
	}

	slog.Info("Starting HTTP server", "port", a.config.Server.Port)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

// stopBackground halts the clock, the retry job and the registry feed
func (a *Application) stopBackground() {
	a.stopOnce.Do(func() {
		a.clock.Stop()
		a.discovery.Stop()
		if a.stopFollow != nil {
			a.stopFollow()
			<-a.followDone
		}
	})
}

func (a *Application) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	a.stopBackground()
	a.httpAdapter.Close()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	if err := a.deps.Cleanup(); err != nil {
		slog.Warn("Error releasing resources", "error", err)
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.router
}

// Handler returns the full HTTP handler including compression
func (a *Application) Handler() http.Handler {
	return a.httpServer.Handler
}

// Registry returns the series registry
func (a *Application) Registry() *catalog.Registry {
	return a.registry
}

// Session returns the shared playback session
func (a *Application) Session() *playback.Session {
	return a.session
}
