package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
	"solarviz.app/internal/core/catalog"
	"solarviz.app/internal/core/playback"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/mocks"
	"solarviz.app/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...ports.Field) {}
func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}

type healthFunc func(ctx context.Context) map[string]ports.HealthStatus

func (f healthFunc) CheckAll(ctx context.Context) map[string]ports.HealthStatus { return f(ctx) }

var (
	testStart   = time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC)
	testEnd     = time.Date(2013, 12, 31, 0, 0, 0, 0, time.UTC)
	testInstant = time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
)

func testDefinitions() []series.Definition {
	return []series.Definition{
		{
			ID:       "measdaily",
			Name:     "Measured (daily)",
			Color:    "#aa2e25",
			URL:      "https://solar-viz-data.s3.amazonaws.com/measdaily/",
			Type:     series.BackendFlatStore,
			StepSize: series.Daily,
			Unit:     "Wh/m²",
		},
		{
			ID:       "meashourly",
			Name:     "Measured (hourly)",
			Color:    "#aa2e25",
			URL:      "https://developer.nrel.gov/api/hsds",
			Type:     series.BackendHSDS,
			StepSize: series.Hourly,
			Unit:     "W/m²",
		},
	}
}

func idleTicker(time.Duration) (<-chan time.Time, func()) {
	return make(chan time.Time), func() {}
}

type testServer struct {
	server  *HTTPServerAdapter
	router  *gin.Engine
	session *playback.Session
	clock   *playback.Clock
	sources map[string]*mocks.DataSource
	health  map[string]ports.HealthStatus
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		sources: map[string]*mocks.DataSource{},
		health: map[string]ports.HealthStatus{
			"sources": {Component: "sources", Status: "healthy"},
		},
	}
	for _, def := range testDefinitions() {
		ts.sources[def.ID] = mocks.NewDataSource(t)
	}

	registry, err := catalog.NewRegistry(catalog.RegistryDependencies{
		Definitions: testDefinitions(),
		Interval:    series.Interval{Start: testStart, End: testEnd},
		Factory: ports.SourceFactoryFunc(func(def series.Definition) (ports.DataSource, error) {
			return ts.sources[def.ID], nil
		}),
		Logger: nopLogger{},
	})
	require.NoError(t, err)

	ts.session, err = playback.NewSession(series.PlaybackInstant{Current: testInstant, StepSize: series.Daily}, nopLogger{})
	require.NoError(t, err)

	ts.clock, err = playback.NewClock(time.Second, ts.session.Instant, ts.session.Set, nopLogger{}, playback.WithTicker(idleTicker))
	require.NoError(t, err)
	t.Cleanup(ts.clock.Stop)

	ts.server, err = NewHTTPServerAdapter(ServerOptions{
		Config: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
			RetryAfter:     7 * time.Second,
		},
		Catalog: registry,
		Session: ts.session,
		Clock:   ts.clock,
		SystemHealthChecker: healthFunc(func(context.Context) map[string]ports.HealthStatus {
			return ts.health
		}),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		}),
		Logger: nopLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(ts.server.Close)

	ts.router = ts.server.GetRouter()
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

func sampleShape(instant time.Time, points int) *series.Shape {
	shape := series.NewShape(instant, "measdaily", "https://solar-viz-data.s3.amazonaws.com/measdaily/2010-06-15T000000Z")
	for i := 0; i < points; i++ {
		f := geojson.NewFeature(orb.Point{-96 + float64(i)*0.01, 38.5})
		f.Properties["dailyEnergy"] = 5200.0 + float64(i)
		shape.Append(f)
	}
	return shape
}
