package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
	"solarviz.app/pkg/validation"
)

// InstantRequest moves playback to another instant. An empty step size keeps
// the current one.
type InstantRequest struct {
	Current  string `json:"current" binding:"required"`
	StepSize string `json:"stepSize"`
}

// SeriesRequest selects the series driving playback
type SeriesRequest struct {
	SeriesID string `json:"seriesId" binding:"required"`
}

// PlaybackResponse represents the shared playback state
type PlaybackResponse struct {
	Instant      series.PlaybackInstant `json:"instant"`
	SeriesID     string                 `json:"seriesId,omitempty"`
	Clock        string                 `json:"clock"`
	TickInterval string                 `json:"tickInterval"`
}

// getPlayback handles GET /api/playback requests
func (s *HTTPServerAdapter) getPlayback(c *gin.Context) {
	c.JSON(http.StatusOK, s.playbackState())
}

// setInstant handles PUT /api/playback/instant requests
func (s *HTTPServerAdapter) setInstant(c *gin.Context) {
	var req InstantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, errors.NewValidationError("invalid request: "+err.Error()))
		return
	}

	instant, err := applyInstant(s.session, s.catalog.DataInterval(), req)
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.logger.Info("Playback instant set",
		ports.F("instant", series.CanonicalKey(instant.Current)),
		ports.F("step", instant.StepSize.String()))
	c.JSON(http.StatusOK, s.playbackState())
}

// selectSeries handles PUT /api/playback/series requests
func (s *HTTPServerAdapter) selectSeries(c *gin.Context) {
	var req SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, errors.NewValidationError("invalid request: "+err.Error()))
		return
	}

	id, _ := validation.TrimAndValidate(req.SeriesID)
	def, err := s.lookupSeries(id)
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.session.SelectSeries(def)
	c.JSON(http.StatusOK, s.playbackState())
}

// startPlayback handles POST /api/playback/start requests
func (s *HTTPServerAdapter) startPlayback(c *gin.Context) {
	s.clock.Start()
	c.JSON(http.StatusOK, s.playbackState())
}

// stopPlayback handles POST /api/playback/stop requests
func (s *HTTPServerAdapter) stopPlayback(c *gin.Context) {
	s.clock.Stop()
	c.JSON(http.StatusOK, s.playbackState())
}

func (s *HTTPServerAdapter) playbackState() PlaybackResponse {
	return PlaybackResponse{
		Instant:      s.session.Instant(),
		SeriesID:     s.session.SelectedSeries(),
		Clock:        string(s.clock.State()),
		TickInterval: s.clock.Period().String(),
	}
}

// applyInstant validates a requested instant against the data interval,
// snaps it onto its step and stores it in the session
func applyInstant(session PlaybackSession, interval series.Interval, req InstantRequest) (series.PlaybackInstant, error) {
	current, err := series.ParseTimestamp(req.Current)
	if err != nil {
		return series.PlaybackInstant{}, errors.NewValidationError("current must be an RFC 3339 timestamp")
	}

	step := session.Instant().StepSize
	if raw, ok := validation.TrimAndValidate(req.StepSize); ok {
		step, err = series.ParseStepSize(raw)
		if err != nil {
			return series.PlaybackInstant{}, errors.NewValidationError(err.Error())
		}
	}

	current = step.Floor(current)
	if !interval.Contains(current) {
		return series.PlaybackInstant{}, errors.NewTimeOutOfRangeError(
			"time " + series.CanonicalKey(current) + " is outside the available data interval")
	}

	instant := series.PlaybackInstant{Current: current, StepSize: step}
	session.Set(instant)
	return instant, nil
}
