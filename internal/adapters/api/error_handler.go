package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"solarviz.app/internal/ports"
	errorspkg "solarviz.app/pkg/errors"
)

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// handleError handles different types of application errors
func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	var appErr *errorspkg.AppError
	var statusCode int
	var message string

	if !errors.As(err, &appErr) {
		s.logError(c, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "Internal server error",
			RequestID: c.GetString(requestIDKey),
		})
		return
	}

	switch appErr.Type {
	case errorspkg.ValidationError, errorspkg.TimeMisalignedError:
		statusCode = http.StatusBadRequest
		message = appErr.Message
	case errorspkg.NotFoundError, errorspkg.UnknownSeriesError, errorspkg.NoPrefetchedDataError:
		statusCode = http.StatusNotFound
		message = appErr.Message
	case errorspkg.TimeOutOfRangeError:
		statusCode = http.StatusRequestedRangeNotSatisfiable
		message = appErr.Message
	case errorspkg.ConfigurationNotReadyError:
		statusCode = http.StatusServiceUnavailable
		message = appErr.Message
		c.Header("Retry-After", strconv.Itoa(int(s.retryAfterSeconds())))
	case errorspkg.ConfigurationError:
		statusCode = http.StatusServiceUnavailable
		message = "Data source unavailable"
	case errorspkg.BackendError, errorspkg.MalformedResponseError:
		statusCode = http.StatusBadGateway
		message = "Upstream data service failed"
	case errorspkg.DatabaseError:
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	default:
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	if statusCode >= http.StatusInternalServerError {
		s.logError(c, err)
	}

	c.JSON(statusCode, ErrorResponse{
		Error:     message,
		Type:      appErr.Type.String(),
		RequestID: c.GetString(requestIDKey),
	})
}

func (s *HTTPServerAdapter) retryAfterSeconds() int64 {
	seconds := int64(s.config.RetryAfter.Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}

func (s *HTTPServerAdapter) logError(c *gin.Context, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error("Request failed",
		ports.F("path", c.Request.URL.Path),
		ports.F("request_id", c.GetString(requestIDKey)),
		ports.F("error", err))
}
