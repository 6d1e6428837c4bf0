package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"solarviz.app/internal/ports"
)

// HealthResponse represents the aggregated health report
type HealthResponse struct {
	Status     string                        `json:"status"`
	Timestamp  string                        `json:"timestamp"`
	Clients    int                           `json:"websocketClients"`
	Components map[string]ports.HealthStatus `json:"components"`
}

// getHealth handles GET /api/health requests. Degraded still answers 200 so
// load balancers keep routing while the archive finishes discovery.
func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	results := s.healthChecker.CheckAll(c.Request.Context())

	status := "healthy"
	for _, result := range results {
		if result.Status == "unhealthy" {
			status = "unhealthy"
			break
		}
		if result.Status == "degraded" {
			status = "degraded"
		}
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Clients:    s.hub.ClientCount(),
		Components: results,
	})
}
