package infrastructure

import (
	"context"
	"time"

	"gorm.io/gorm"
	"solarviz.app/internal/ports"
)

// catalogPingTimeout bounds one health probe of the catalog database
const catalogPingTimeout = 2 * time.Second

// SeriesCounter reports how many series the catalog table holds
type SeriesCounter interface {
	Count(ctx context.Context) (int64, error)
}

// CatalogDatabaseHealthChecker reports on the database holding the series
// catalog. An empty catalog is degraded: the service runs but serves nothing.
type CatalogDatabaseHealthChecker struct {
	db     *gorm.DB
	series SeriesCounter
}

// NewCatalogDatabaseHealthChecker creates the checker. series may be nil,
// in which case only connectivity is checked.
func NewCatalogDatabaseHealthChecker(db *gorm.DB, series SeriesCounter) *CatalogDatabaseHealthChecker {
	return &CatalogDatabaseHealthChecker{db: db, series: series}
}

func (c *CatalogDatabaseHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	result := ports.HealthStatus{
		Component: "database",
		Status:    StatusUnhealthy,
		Details:   map[string]interface{}{},
	}
	if c.db == nil {
		result.Error = "catalog database is not configured"
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, catalogPingTimeout)
	defer cancel()

	pool, err := c.db.DB()
	if err != nil {
		result.Error = "catalog database handle unavailable: " + err.Error()
		return result
	}
	if err := pool.PingContext(ctx); err != nil {
		result.Error = "catalog database unreachable: " + err.Error()
		return result
	}

	stats := pool.Stats()
	result.Details["openConnections"] = stats.OpenConnections
	result.Details["inUse"] = stats.InUse
	result.Details["waitCount"] = stats.WaitCount
	result.Status = StatusHealthy

	if c.series == nil {
		return result
	}

	count, err := c.series.Count(ctx)
	switch {
	case err != nil:
		result.Status = StatusDegraded
		result.Error = "series catalog unreadable: " + err.Error()
	case count == 0:
		result.Status = StatusDegraded
		result.Error = "series catalog is empty"
	}
	result.Details["series"] = count
	return result
}
