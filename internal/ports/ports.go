package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Data
	SourceFactory    SourceFactory
	SeriesRepository SeriesRepository
	PayloadStore     PayloadStore

	// Observability
	SourceMetrics SourceMetrics
	CacheMetrics  CacheMetrics

	// Infrastructure
	Logger   Logger
	Database interface{}
}
