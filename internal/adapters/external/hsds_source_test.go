package external

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

const (
	testNX = 51
	testNY = 50
)

// fakeArchive serves the discovery documents and datasets of an HSDS domain
type fakeArchive struct {
	*recordingServer

	gate          chan struct{}
	withCoords    bool
	failRoot      atomic.Bool
	valueRequests atomic.Int32

	mu      sync.Mutex
	selects []string
}

func newFakeArchive(t *testing.T, withCoords bool) *fakeArchive {
	t.Helper()
	archive := &fakeArchive{withCoords: withCoords}
	archive.recordingServer = newRecordingServer(t, archive.handle)
	return archive
}

func (a *fakeArchive) handle(w http.ResponseWriter, r *http.Request) {
	if a.gate != nil {
		<-a.gate
	}
	base := a.URL

	switch r.URL.Path {
	case "/":
		if a.failRoot.Load() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeJSON(w, map[string]interface{}{
			"hrefs": []map[string]string{
				{"rel": "self", "href": base + "/?host=x"},
				{"rel": "root", "href": base + "/groups/g-root"},
			},
		})
	case "/groups/g-root":
		writeJSON(w, map[string]interface{}{
			"hrefs": []map[string]string{{"rel": "links", "href": base + "/groups/g-root/links"}},
		})
	case "/groups/g-root/links":
		links := []map[string]string{
			{"title": "GHI", "id": "d-ghi", "class": "H5L_TYPE_HARD"},
			{"title": "DNI", "id": "d-dni", "class": "H5L_TYPE_HARD"},
		}
		if a.withCoords {
			links = append(links, map[string]string{"title": "coordinates", "id": "d-coords"})
		}
		writeJSON(w, map[string]interface{}{"links": links})
	case "/datasets/d-ghi/value":
		a.valueRequests.Add(1)
		a.mu.Lock()
		a.selects = append(a.selects, r.URL.Query().Get("select"))
		a.mu.Unlock()
		writeJSON(w, map[string]interface{}{"value": [][][]float64{valueGrid()}})
	case "/datasets/d-coords/value":
		writeJSON(w, map[string]interface{}{"value": coordinateGrid()})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (a *fakeArchive) selectQueries() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.selects))
	copy(out, a.selects)
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func valueGrid() [][]float64 {
	grid := make([][]float64, testNX)
	for a := range grid {
		grid[a] = make([]float64, testNY)
		for b := range grid[a] {
			grid[a][b] = float64(a*testNY + b)
		}
	}
	return grid
}

// coordinateGrid returns (lat, lon) samples on a regular 0.5 degree lattice
func coordinateGrid() [][][]float64 {
	grid := make([][][]float64, testNX)
	for a := range grid {
		grid[a] = make([][]float64, testNY)
		for b := range grid[a] {
			grid[a][b] = []float64{20 + 0.5*float64(a), -130 + 0.5*float64(b)}
		}
	}
	return grid
}

func newHSDS(t *testing.T, baseURL string, logger ports.Logger) *HSDSSource {
	t.Helper()
	source, err := NewHSDSSource(HSDSSourceParams{
		SeriesID:            "meashourly",
		BaseURL:             baseURL,
		Domain:              "/nrel/wtk-us.h5",
		APIKey:              "test-key",
		Variable:            "GHI",
		CoordinatesVariable: "coordinates",
		XDomain:             [2]int{0, 1601},
		YDomain:             [2]int{0, 2975},
		Fetcher:             newTestClient("hsds", logger),
		Logger:              logger,
	})
	require.NoError(t, err)
	return source
}

func waitReady(t *testing.T, source *HSDSSource) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return source.WaitReady(ctx)
}

func TestHSDSSource_NotReadyThenReady(t *testing.T) {
	archive := newFakeArchive(t, false)
	archive.gate = make(chan struct{})
	source := newHSDS(t, archive.URL, &testLogger{})

	ts := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	_, err := source.Get(context.Background(), ts)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationNotReadyError(err))
	assert.Equal(t, ports.SourceStateLoading, source.Status().State)

	close(archive.gate)
	require.NoError(t, waitReady(t, source))
	assert.Equal(t, StateReady, source.State())

	shape, err := source.Get(context.Background(), ts)
	require.NoError(t, err)

	assert.Equal(t, int32(1), archive.valueRequests.Load())
	assert.Equal(t, []string{"[30264:30265,0:1601:32,0:2975:60]"}, archive.selectQueries())
	assert.Equal(t, HSDSSourceName, shape.Properties.Source)
	assert.Equal(t, "2010-06-15T00:00:00.000Z", shape.Properties.Instant)
	assert.Contains(t, shape.Properties.URL, "/datasets/d-ghi/value?select=[30264:30265,0:1601:32,0:2975:60]")
	assert.NotContains(t, shape.Properties.URL, "api_key")
	require.Len(t, shape.Features, testNX*testNY)

	first := shape.Features[0]
	assert.Equal(t, 0.0, first.Properties["instantaneousValue"])
	polygon, ok := first.Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, polygon, 1)
	require.Len(t, polygon[0], 5)
	assert.Equal(t, polygon[0][0], polygon[0][4])
	assert.Equal(t, float64(testNX*testNY-1), shape.Features[len(shape.Features)-1].Properties["instantaneousValue"])

	for _, r := range archive.snapshotRequests() {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"), "request %s lacks the api key", r.URL.Path)
	}
}

func TestHSDSSource_CoordinateGridFromArchive(t *testing.T) {
	archive := newFakeArchive(t, true)
	logger := &testLogger{}
	source := newHSDS(t, archive.URL, logger)
	require.NoError(t, waitReady(t, source))

	shape, err := source.Get(context.Background(), time.Date(2007, 1, 1, 5, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"[5:6,0:1601:32,0:2975:60]"}, archive.selectQueries())

	polygon := shape.Features[0].Geometry.(orb.Polygon)
	ring := polygon[0]
	assert.Equal(t, orb.Point{-130, 20}, ring[0])
	assert.Equal(t, orb.Point{-130, 20.5}, ring[1])
	assert.Equal(t, orb.Point{-129.5, 20.5}, ring[2])
	assert.Equal(t, orb.Point{-129.5, 20}, ring[3])
	assert.Equal(t, ring[0], ring[4])

	// The far edge is extrapolated from the last two samples
	last := shape.Features[len(shape.Features)-1].Geometry.(orb.Polygon)[0]
	assert.InDelta(t, -130+0.5*float64(testNY), last[2][0], 1e-9)
	assert.InDelta(t, 20+0.5*float64(testNX), last[2][1], 1e-9)

	entry, ok := logger.find("HSDS discovery completed")
	require.True(t, ok)
	assert.Equal(t, true, entry.fields["coordinates_from_archive"])
}

func TestHSDSSource_ProjectedGridCoversConus(t *testing.T) {
	archive := newFakeArchive(t, false)
	source := newHSDS(t, archive.URL, &testLogger{})
	require.NoError(t, waitReady(t, source))

	shape, err := source.Get(context.Background(), time.Date(2008, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	bound := shape.Features[0].Geometry.Bound()
	for _, f := range shape.Features[1:] {
		bound = bound.Union(f.Geometry.Bound())
	}
	assert.Greater(t, bound.Min.Lon(), -170.0)
	assert.Less(t, bound.Max.Lon(), -30.0)
	assert.Greater(t, bound.Min.Lat(), 10.0)
	assert.Less(t, bound.Max.Lat(), 70.0)
	assert.True(t, bound.Contains(orb.Point{-96, 38.5}), "grid should cover the projection centre")
}

func TestHSDSSource_TimeBeforeEpoch(t *testing.T) {
	archive := newFakeArchive(t, false)
	source := newHSDS(t, archive.URL, &testLogger{})
	require.NoError(t, waitReady(t, source))

	_, err := source.Get(context.Background(), time.Date(2006, 12, 31, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.True(t, errors.IsTimeOutOfRangeError(err))
	assert.Zero(t, archive.valueRequests.Load())
}

func TestHSDSSource_DiscoveryFailureAndRediscover(t *testing.T) {
	archive := newFakeArchive(t, false)
	archive.failRoot.Store(true)
	logger := &testLogger{}
	source := newHSDS(t, archive.URL, logger)

	err := waitReady(t, source)
	require.Error(t, err)
	assert.True(t, errors.IsBackendError(err))
	assert.Equal(t, StateFailed, source.State())
	assert.Equal(t, ports.SourceStateFailed, source.Status().State)

	_, err = source.Get(context.Background(), time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, errors.IsBackendError(err))

	_, ok := logger.find("HSDS discovery failed")
	assert.True(t, ok)

	archive.failRoot.Store(false)
	require.True(t, source.Rediscover(context.Background()))
	require.NoError(t, waitReady(t, source))
	assert.Equal(t, StateReady, source.State())
	assert.False(t, source.Rediscover(context.Background()), "a ready source is not rediscovered")

	_, err = source.Get(context.Background(), time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
}

func TestHSDSSource_MissingVariable(t *testing.T) {
	archive := newFakeArchive(t, false)
	logger := &testLogger{}
	source, err := NewHSDSSource(HSDSSourceParams{
		SeriesID: "meashourly",
		BaseURL:  archive.URL,
		Domain:   "/nrel/wtk-us.h5",
		Variable: "windspeed_100m",
		XDomain:  [2]int{0, 1601},
		YDomain:  [2]int{0, 2975},
		Fetcher:  newTestClient("hsds", logger),
		Logger:   logger,
	})
	require.NoError(t, err)

	err = waitReady(t, source)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedResponseError(err))
	assert.Contains(t, err.Error(), "windspeed_100m")
}

func TestHSDSSource_SelectString(t *testing.T) {
	source := &HSDSSource{
		epoch:   DefaultHSDSEpoch,
		xDomain: [2]int{0, 1601},
		yDomain: [2]int{0, 2975},
		divisor: 50,
	}

	assert.Equal(t, "[0:1,0:1601:32,0:2975:60]", source.SelectString(0))
	assert.Equal(t, "[26:27,0:1601:32,0:2975:60]", source.SelectString(26))
	assert.Equal(t, 24, source.HourOffset(time.Date(2007, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, source.HourOffset(time.Date(2007, 1, 1, 0, 40, 0, 0, time.UTC)))

	nx, ny := source.cellCounts()
	assert.Equal(t, testNX, nx)
	assert.Equal(t, testNY, ny)
}

func TestDiscoveryStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "discovering_root", StateDiscoveringRoot.String())
	assert.Equal(t, "discovering_links", StateDiscoveringLinks.String())
	assert.Equal(t, "fetching_coordinate_grid", StateFetchingCoordinateGrid.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
}

func TestNewHSDSSource_Validation(t *testing.T) {
	fetcher := newTestClient("hsds", &testLogger{})
	base := HSDSSourceParams{
		BaseURL:  "https://archive",
		Domain:   "/d.h5",
		Variable: "GHI",
		XDomain:  [2]int{0, 10},
		YDomain:  [2]int{0, 10},
		Fetcher:  fetcher,
		Logger:   &testLogger{},
	}

	tests := []struct {
		name   string
		mutate func(p *HSDSSourceParams)
	}{
		{name: "EmptyBaseURL", mutate: func(p *HSDSSourceParams) { p.BaseURL = "" }},
		{name: "EmptyDomain", mutate: func(p *HSDSSourceParams) { p.Domain = "" }},
		{name: "EmptyVariable", mutate: func(p *HSDSSourceParams) { p.Variable = "" }},
		{name: "NilFetcher", mutate: func(p *HSDSSourceParams) { p.Fetcher = nil }},
		{name: "NilLogger", mutate: func(p *HSDSSourceParams) { p.Logger = nil }},
		{name: "EmptyXDomain", mutate: func(p *HSDSSourceParams) { p.XDomain = [2]int{5, 5} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := base
			tt.mutate(&params)
			source, err := NewHSDSSource(params)
			require.Error(t, err)
			assert.Nil(t, source)
			assert.True(t, errors.IsConfigurationError(err))
		})
	}
}
