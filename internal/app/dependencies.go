package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"solarviz.app/internal/adapters/database"
	"solarviz.app/internal/adapters/external"
	"solarviz.app/internal/adapters/infrastructure"
	"solarviz.app/internal/config"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
)

type DependencyContainer struct {
	config  *config.Config
	options DependencyOptions

	db            *gorm.DB
	seriesRepo    *database.SeriesRepositoryAdapter
	payloadStore  ports.PayloadStore
	sourceMetrics *infrastructure.SourceMetricsCollector
	sourceFactory *external.SourceFactory
	logger        ports.Logger
	ports         *ports.ApplicationPorts
}

// DependencyOptions overrides infrastructure the container would otherwise
// create itself
type DependencyOptions struct {
	// Database is used instead of opening a Postgres connection
	Database *gorm.DB
	// Registerer receives the application metrics; the default registry when nil
	Registerer prometheus.Registerer
	// HTTPClient is shared by every backend client
	HTTPClient *http.Client
	// Logger replaces the configured logger
	Logger ports.Logger
}

func NewDependencyContainer(cfg *config.Config, opts DependencyOptions) (*DependencyContainer, error) {
	container := &DependencyContainer{
		config:  cfg,
		options: opts,
	}

	if err := container.initializeLogger(); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	if err := container.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	if err := container.initializePorts(); err != nil {
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	return container, nil
}

func (c *DependencyContainer) initializeLogger() error {
	if c.options.Logger != nil {
		c.logger = c.options.Logger
		return nil
	}

	logger, err := infrastructure.NewLogger(c.config.Logging)
	if err != nil {
		return err
	}
	if c.config.Logging.FilePath != "" {
		slog.Info("File logging enabled", "path", c.config.Logging.FilePath)
	}
	c.logger = logger
	return nil
}

// initializeDatabase connects only when the catalog lives in the database
func (c *DependencyContainer) initializeDatabase() error {
	if c.config.Catalog.Source != config.CatalogSourceDatabase {
		return nil
	}

	db := c.options.Database
	if db == nil {
		slog.Info("Initializing database connection...")

		var err error
		db, err = gorm.Open(postgres.Open(c.config.Database.GetDSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
	}

	repo := database.NewSeriesRepositoryAdapter(db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	c.db = db
	c.seriesRepo = repo
	slog.Info("Database connection established successfully")
	return nil
}

func (c *DependencyContainer) initializePorts() error {
	slog.Info("Initializing ports...")

	storeFactory := external.NewPayloadStoreFactory()
	store, err := storeFactory.CreatePayloadStore(&c.config.Cache)
	if err != nil {
		return fmt.Errorf("create payload store: %w", err)
	}
	c.payloadStore = store

	slog.Info("Payload store initialized",
		"type", c.config.Cache.Type.String(),
		"redis_addr", c.config.Cache.Redis.Addr)

	registerer := c.options.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	c.sourceMetrics = infrastructure.NewSourceMetricsCollector(registerer)

	sourceFactory, err := external.NewSourceFactory(external.SourceFactoryParams{
		Config:     c.config,
		Store:      store,
		Metrics:    c.sourceMetrics,
		Logger:     c.logger,
		HTTPClient: c.options.HTTPClient,
	})
	if err != nil {
		return fmt.Errorf("create source factory: %w", err)
	}
	c.sourceFactory = sourceFactory

	c.ports = &ports.ApplicationPorts{
		SourceFactory: sourceFactory,
		PayloadStore:  store,
		SourceMetrics: c.sourceMetrics,
		Logger:        c.logger,
	}
	if cacheMetrics, ok := store.(ports.CacheMetrics); ok {
		c.ports.CacheMetrics = cacheMetrics
	}
	if c.seriesRepo != nil {
		c.ports.SeriesRepository = c.seriesRepo
		c.ports.Database = c.db
	}

	slog.Info("Ports initialized successfully")
	return nil
}

// LoadCatalog returns the series to serve. A database catalog is seeded
// with the default catalog on first start.
func (c *DependencyContainer) LoadCatalog(ctx context.Context) ([]series.Definition, error) {
	defaults := c.config.DefaultCatalog()
	if c.seriesRepo == nil {
		return defaults, nil
	}

	seeded, err := database.SeedIfEmpty(ctx, c.seriesRepo, defaults)
	if err != nil {
		return nil, fmt.Errorf("seed series catalog: %w", err)
	}
	if seeded {
		c.logger.Info("Series catalog seeded", ports.F("series", len(defaults)))
	}

	defs, err := c.seriesRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load series catalog: %w", err)
	}
	return defs, nil
}

func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

func (c *DependencyContainer) Database() *gorm.DB {
	return c.db
}

// SourceFactory exposes the factory for breaker state reporting
func (c *DependencyContainer) SourceFactory() *external.SourceFactory {
	return c.sourceFactory
}

// MetricsHandler serves the registry the metrics were registered on. A
// custom registerer is served only when it is also a gatherer.
func (c *DependencyContainer) MetricsHandler() http.Handler {
	if c.options.Registerer == nil {
		return promhttp.Handler()
	}
	if gatherer, ok := c.options.Registerer.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

// Cleanup releases the payload store, database connections and log file
func (c *DependencyContainer) Cleanup() error {
	var firstErr error

	if closer, ok := c.payloadStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}

	if c.db != nil {
		if db, err := c.db.DB(); err == nil {
			if err := db.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	// An injected logger belongs to the caller
	if c.options.Logger == nil {
		if closer, ok := c.logger.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
