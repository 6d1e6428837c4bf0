package api

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"solarviz.app/internal/core/series"
	"solarviz.app/pkg/errors"
)

func TestSeriesHandler_ListSeries(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/series", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var defs []series.Definition
	decodeBody(t, w, &defs)
	assert.Equal(t, testDefinitions(), defs)
}

func TestSeriesHandler_GetSeries(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "known", path: "/api/series/meashourly", wantStatus: http.StatusOK},
		{name: "unknown", path: "/api/series/nnhourly", wantStatus: http.StatusNotFound},
		{name: "malformed", path: "/api/series/Meas%20Daily", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do("GET", tt.path, "")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSeriesHandler_GetInterval(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/interval", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var interval IntervalResponse
	decodeBody(t, w, &interval)
	assert.Equal(t, "2007-01-01T00:00:00.000Z", interval.Start)
	assert.Equal(t, "2013-12-31T00:00:00.000Z", interval.End)
}

func TestSeriesHandler_GetSeriesData_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.sources["measdaily"].EXPECT().
		Get(mock.Anything, testInstant).
		Return(sampleShape(testInstant, 3), nil).
		Once()

	w := ts.do("GET", "/api/series/measdaily/data?time=2010-06-15T00:00:00Z", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	decodeBody(t, w, &body)
	assert.Equal(t, "FeatureCollection", body["type"])
	assert.Len(t, body["features"], 3)
	props := body["properties"].(map[string]interface{})
	assert.Equal(t, "2010-06-15T00:00:00.000Z", props["instant"])
}

func TestSeriesHandler_GetSeriesData_DefaultsToPlaybackInstant(t *testing.T) {
	ts := newTestServer(t)
	scrubbed := time.Date(2011, 3, 2, 0, 0, 0, 0, time.UTC)
	ts.session.SetCurrent(scrubbed)

	ts.sources["measdaily"].EXPECT().
		Get(mock.Anything, scrubbed).
		Return(sampleShape(scrubbed, 1), nil).
		Once()

	w := ts.do("GET", "/api/series/measdaily/data", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSeriesHandler_GetSeriesData_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		sourceErr  error
		wantStatus int
		wantType   string
	}{
		{
			name:       "unknown series",
			path:       "/api/series/arimahourly/data?time=2010-06-15T00:00:00Z",
			wantStatus: http.StatusNotFound,
			wantType:   "UNKNOWN_SERIES_ERROR",
		},
		{
			name:       "unparseable time",
			path:       "/api/series/measdaily/data?time=yesterday",
			wantStatus: http.StatusBadRequest,
			wantType:   "VALIDATION_ERROR",
		},
		{
			name:       "outside interval",
			path:       "/api/series/measdaily/data?time=2020-01-01T00:00:00Z",
			wantStatus: http.StatusRequestedRangeNotSatisfiable,
			wantType:   "TIME_OUT_OF_RANGE_ERROR",
		},
		{
			name:       "misaligned",
			path:       "/api/series/measdaily/data?time=2010-06-15T06:00:00Z",
			sourceErr:  errors.NewTimeMisalignedError("not on a day boundary"),
			wantStatus: http.StatusBadRequest,
			wantType:   "TIME_MISALIGNED_ERROR",
		},
		{
			name:       "backend failure",
			path:       "/api/series/measdaily/data?time=2010-06-15T00:00:00Z",
			sourceErr:  errors.NewBackendError("flat-store returned status 503", nil),
			wantStatus: http.StatusBadGateway,
			wantType:   "BACKEND_ERROR",
		},
		{
			name:       "malformed upstream",
			path:       "/api/series/measdaily/data?time=2010-06-15T00:00:00Z",
			sourceErr:  errors.NewMalformedResponseError("not a feature collection", nil),
			wantStatus: http.StatusBadGateway,
			wantType:   "MALFORMED_RESPONSE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.sourceErr != nil {
				ts.sources["measdaily"].EXPECT().
					Get(mock.Anything, mock.Anything).
					Return(nil, tt.sourceErr).
					Once()
			}

			w := ts.do("GET", tt.path, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp ErrorResponse
			decodeBody(t, w, &resp)
			assert.Equal(t, tt.wantType, resp.Type)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestSeriesHandler_GetSeriesData_NotReady(t *testing.T) {
	ts := newTestServer(t)
	ts.sources["meashourly"].EXPECT().
		Get(mock.Anything, mock.Anything).
		Return(nil, errors.NewConfigurationNotReadyError("HSDS discovery in progress")).
		Once()

	w := ts.do("GET", "/api/series/meashourly/data?time=2010-06-15T03:00:00Z", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "7", w.Header().Get("Retry-After"))
}

func TestServer_GzipLargeResponses(t *testing.T) {
	ts := newTestServer(t)
	ts.sources["measdaily"].EXPECT().
		Get(mock.Anything, mock.Anything).
		Return(sampleShape(testInstant, 500), nil).
		Once()

	server := httptest.NewServer(ts.server.Handler())
	defer server.Close()

	req, err := http.NewRequest("GET", server.URL+"/api/series/measdaily/data?time=2010-06-15T00:00:00Z", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")

	transport := &http.Transport{DisableCompression: true}
	resp, err := (&http.Client{Transport: transport}).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	reader, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(reader)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Len(t, body["features"], 500)
}

func TestServer_RequestID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/interval", "")
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)

	req := httptest.NewRequest("GET", "/api/interval", nil)
	req.Header.Set("X-Request-ID", "0b5f2a8e-4c1d-4b55-9a43-2f0f3f1f9a10")
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, "0b5f2a8e-4c1d-4b55-9a43-2f0f3f1f9a10", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest("GET", "/api/interval", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get("X-Request-ID"))
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# metrics")
}

func TestServerOptions_Validate(t *testing.T) {
	_, err := NewHTTPServerAdapter(ServerOptions{})

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
