// Package api provides HTTP adapters for the hexagonal architecture
// These adapters handle incoming HTTP requests and translate them to use cases
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"solarviz.app/internal/core/playback"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	// RetryAfter is advertised when a data source is still loading
	RetryAfter time.Duration
}

// HTTPServerAdapter implements HTTP server using Gin framework
type HTTPServerAdapter struct {
	router         *gin.Engine
	config         ServerConfig
	catalog        SeriesCatalog
	session        PlaybackSession
	clock          PlaybackClock
	healthChecker  ports.SystemHealthChecker
	metricsHandler http.Handler
	hub            *PlaybackHub
	logger         ports.Logger
}

// Use case interfaces that the HTTP adapter depends on
type SeriesCatalog interface {
	ListSeries() []series.Definition
	SeriesByID(id string) (series.Definition, error)
	DataInterval() series.Interval
	Get(ctx context.Context, seriesID string, timestamp time.Time) (*series.Shape, error)
}

type PlaybackSession interface {
	Instant() series.PlaybackInstant
	SelectedSeries() string
	Set(instant series.PlaybackInstant)
	SelectSeries(def series.Definition)
	Subscribe(buffer int) (<-chan series.PlaybackInstant, func())
}

type PlaybackClock interface {
	Start()
	Stop()
	State() playback.ClockState
	Period() time.Duration
}

// ServerOptions represents options for creating the HTTP server
type ServerOptions struct {
	Config              ServerConfig
	Catalog             SeriesCatalog
	Session             PlaybackSession
	Clock               PlaybackClock
	SystemHealthChecker ports.SystemHealthChecker
	// MetricsHandler serves /metrics; promhttp.Handler() when nil
	MetricsHandler http.Handler
	Logger         ports.Logger
}

// NewHTTPServerAdapter creates a new HTTP server adapter
func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Config.RetryAfter <= 0 {
		opts.Config.RetryAfter = 5 * time.Second
	}
	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &HTTPServerAdapter{
		router:         router,
		config:         opts.Config,
		catalog:        opts.Catalog,
		session:        opts.Session,
		clock:          opts.Clock,
		healthChecker:  opts.SystemHealthChecker,
		metricsHandler: metricsHandler,
		logger:         opts.Logger,
	}
	server.hub = NewPlaybackHub(PlaybackHubOptions{
		Session:        opts.Session,
		Clock:          opts.Clock,
		Interval:       opts.Catalog.DataInterval(),
		AllowedOrigins: opts.Config.AllowedOrigins,
		Logger:         opts.Logger,
	})

	router.Use(requestIDMiddleware(), accessLogMiddleware(opts.Logger), corsMiddleware(opts.Config.AllowedOrigins))
	server.setupRoutes()
	return server, nil
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.Catalog == nil {
		return errors.NewValidationError("series catalog is required")
	}
	if opts.Session == nil {
		return errors.NewValidationError("playback session is required")
	}
	if opts.Clock == nil {
		return errors.NewValidationError("playback clock is required")
	}
	if opts.SystemHealthChecker == nil {
		return errors.NewValidationError("system health checker is required")
	}
	if opts.Logger == nil {
		return errors.NewValidationError("logger is required")
	}
	return nil
}

// setupRoutes configures all HTTP routes
func (s *HTTPServerAdapter) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/series", s.listSeries)
		api.GET("/series/:id", s.getSeries)
		api.GET("/series/:id/data", s.getSeriesData)
		api.GET("/interval", s.getInterval)

		api.GET("/playback", s.getPlayback)
		api.PUT("/playback/instant", s.setInstant)
		api.PUT("/playback/series", s.selectSeries)
		api.POST("/playback/start", s.startPlayback)
		api.POST("/playback/stop", s.stopPlayback)

		api.GET("/health", s.getHealth)
	}

	s.router.GET("/ws/playback", s.hub.Serve)
	s.router.GET("/metrics", gin.WrapH(s.metricsHandler))
}

// Handler returns the router behind gzip compression. WebSocket upgrades
// bypass the compressor since they need the raw connection.
func (s *HTTPServerAdapter) Handler() http.Handler {
	compressed := gzhttp.GzipHandler(s.router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ws/") {
			s.router.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}

// Close disconnects every WebSocket client
func (s *HTTPServerAdapter) Close() {
	s.hub.Close()
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}
