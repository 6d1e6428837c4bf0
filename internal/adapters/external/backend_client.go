// Package external provides adapters for the data backends and the shared
// stores the data sources rely on.
package external

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// BackendFetcher retrieves raw payloads from a backend
type BackendFetcher interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// BackendClient performs GET requests against one backend behind a circuit
// breaker. Server errors and transport failures count against the breaker;
// 4xx answers are per-key problems and do not.
type BackendClient struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  ports.Logger
}

// BackendClientParams holds parameters for creating a backend client
type BackendClientParams struct {
	Name           string
	Timeout        time.Duration
	MaxFailures    uint32
	BreakerTimeout time.Duration
	HTTPClient     *http.Client
	Logger         ports.Logger
}

type backendResponse struct {
	status int
	body   []byte
}

var errServerStatus = stderrors.New("server error")

// NewBackendClient creates a new backend client
func NewBackendClient(params BackendClientParams) *BackendClient {
	client := params.HTTPClient
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	maxFailures := params.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	breakerTimeout := params.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = 30 * time.Second
	}

	logger := params.Logger

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        params.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("Backend circuit breaker state changed",
					ports.F("backend", name),
					ports.F("from", from.String()),
					ports.F("to", to.String()))
			}
		},
	})

	return &BackendClient{
		name:    params.Name,
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

// GetBytes fetches the body of url. Transport failures, non-2xx answers and
// an open breaker all surface as BackendError.
func (c *BackendClient) GetBytes(ctx context.Context, url string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil && c.logger != nil {
				c.logger.Warn("Failed to close backend response body",
					ports.F("backend", c.name), ports.F("error", closeErr))
			}
		}()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d", errServerStatus, resp.StatusCode)
		}
		return &backendResponse{status: resp.StatusCode, body: body}, nil
	})

	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.NewBackendError(fmt.Sprintf("%s backend circuit open", c.name), err)
		}
		return nil, errors.NewBackendError(fmt.Sprintf("%s request to %s failed", c.name, url), err)
	}

	resp, ok := result.(*backendResponse)
	if !ok {
		return nil, errors.NewBackendError("unexpected result type from circuit breaker", nil)
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, errors.NewBackendError(fmt.Sprintf("%s returned status %d for %s", c.name, resp.status, url), nil)
	}
	return resp.body, nil
}

// State reports the breaker state
func (c *BackendClient) State() string {
	return c.breaker.State().String()
}

// getJSON fetches url and decodes the body into out
func getJSON(ctx context.Context, fetcher BackendFetcher, url string, out interface{}) error {
	body, err := fetcher.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewMalformedResponseError(fmt.Sprintf("failed to decode response from %s", url), err)
	}
	return nil
}
