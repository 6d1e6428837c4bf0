package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
	"solarviz.app/pkg/validation"
)

// IntervalResponse represents the available data range
type IntervalResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// listSeries handles GET /api/series requests
func (s *HTTPServerAdapter) listSeries(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.ListSeries())
}

// getSeries handles GET /api/series/:id requests
func (s *HTTPServerAdapter) getSeries(c *gin.Context) {
	def, err := s.lookupSeries(c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, def)
}

// getInterval handles GET /api/interval requests
func (s *HTTPServerAdapter) getInterval(c *gin.Context) {
	interval := s.catalog.DataInterval()
	c.JSON(http.StatusOK, IntervalResponse{
		Start: series.InstantString(interval.Start),
		End:   series.InstantString(interval.End),
	})
}

// getSeriesData handles GET /api/series/:id/data requests. Without a time
// parameter the current playback instant is used.
func (s *HTTPServerAdapter) getSeriesData(c *gin.Context) {
	def, err := s.lookupSeries(c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	timestamp := s.session.Instant().Current
	if raw, ok := validation.TrimAndValidate(c.Query("time")); ok {
		timestamp, err = series.ParseTimestamp(raw)
		if err != nil {
			s.handleError(c, errors.NewValidationError("time must be an RFC 3339 timestamp"))
			return
		}
	}

	s.logger.Debug("Getting series data",
		ports.F("series", def.ID),
		ports.F("time", series.CanonicalKey(timestamp)))

	shape, err := s.catalog.Get(c.Request.Context(), def.ID, timestamp)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, shape)
}

func (s *HTTPServerAdapter) lookupSeries(id string) (series.Definition, error) {
	if !validation.IsValidSeriesID(id) {
		return series.Definition{}, errors.NewUnknownSeriesError(id)
	}
	return s.catalog.SeriesByID(id)
}
