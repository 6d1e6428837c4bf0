package external

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"solarviz.app/internal/core/geometry"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// HSDSSourceName is the source property of scientific-archive shapes
const HSDSSourceName = "hsds"

// DefaultHSDSEpoch is the first hour stored in the archive
var DefaultHSDSEpoch = time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC)

// DiscoveryState is a step of the startup discovery against the archive
type DiscoveryState int

const (
	StateUninitialized DiscoveryState = iota
	StateDiscoveringRoot
	StateDiscoveringLinks
	StateFetchingCoordinateGrid
	StateReady
	StateFailed
)

// String returns the string representation of the discovery state
func (s DiscoveryState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDiscoveringRoot:
		return "discovering_root"
	case StateDiscoveringLinks:
		return "discovering_links"
	case StateFetchingCoordinateGrid:
		return "fetching_coordinate_grid"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type hsdsHref struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type hsdsHrefs struct {
	Hrefs []hsdsHref `json:"hrefs"`
}

type hsdsLink struct {
	Class      string `json:"class"`
	Collection string `json:"collection"`
	Href       string `json:"href"`
	ID         string `json:"id"`
	Target     string `json:"target"`
	Title      string `json:"title"`
}

type hsdsLinks struct {
	Links []hsdsLink `json:"links"`
}

type hsdsValue struct {
	Value [][][]float64 `json:"value"`
}

// HSDSSource reads hourly irradiance from an HDF5-over-REST archive. It
// discovers the dataset ids asynchronously after construction and refuses
// requests until discovery has finished.
type HSDSSource struct {
	seriesID      string
	baseURL       string
	domain        string
	apiKey        string
	variable      string
	coordVariable string
	epoch         time.Time
	xDomain       [2]int
	yDomain       [2]int
	divisor       int
	step          series.StepSize
	grid          geometry.Grid
	fetcher       BackendFetcher
	logger        ports.Logger

	mu           sync.RWMutex
	state        DiscoveryState
	valueLink    hsdsLink
	corners      [][]geometry.Coordinate
	gridFromData bool
	discoveryErr error
	settled      chan struct{}
}

// HSDSSourceParams holds parameters for creating a scientific-archive source
type HSDSSourceParams struct {
	SeriesID            string
	BaseURL             string
	Domain              string
	APIKey              string
	Variable            string
	CoordinatesVariable string
	Epoch               time.Time
	XDomain             [2]int
	YDomain             [2]int
	Divisor             int
	StepSize            series.StepSize
	Grid                geometry.Grid
	Fetcher             BackendFetcher
	Logger              ports.Logger
}

// NewHSDSSource creates the source and starts discovery in the background
func NewHSDSSource(params HSDSSourceParams) (*HSDSSource, error) {
	if params.BaseURL == "" {
		return nil, errors.NewConfigurationError("HSDS base URL cannot be empty", nil)
	}
	if params.Domain == "" {
		return nil, errors.NewConfigurationError("HSDS domain cannot be empty", nil)
	}
	if params.Variable == "" {
		return nil, errors.NewConfigurationError("HSDS variable cannot be empty", nil)
	}
	if params.Fetcher == nil {
		return nil, errors.NewConfigurationError("HSDS fetcher cannot be nil", nil)
	}
	if params.Logger == nil {
		return nil, errors.NewConfigurationError("HSDS logger cannot be nil", nil)
	}
	if params.XDomain[1] <= params.XDomain[0] || params.YDomain[1] <= params.YDomain[0] {
		return nil, errors.NewConfigurationError("HSDS index domains must be increasing", nil)
	}

	divisor := params.Divisor
	if divisor <= 0 {
		divisor = 50
	}
	step := params.StepSize
	if step.Validate() != nil {
		step = series.Hourly
	}
	epoch := params.Epoch
	if epoch.IsZero() {
		epoch = DefaultHSDSEpoch
	}
	grid := params.Grid
	if grid.Projection == nil {
		grid = geometry.NRELGrid()
	}

	s := &HSDSSource{
		seriesID:      params.SeriesID,
		baseURL:       strings.TrimRight(params.BaseURL, "/"),
		domain:        params.Domain,
		apiKey:        params.APIKey,
		variable:      params.Variable,
		coordVariable: params.CoordinatesVariable,
		epoch:         epoch.UTC(),
		xDomain:       params.XDomain,
		yDomain:       params.YDomain,
		divisor:       divisor,
		step:          step,
		grid:          grid,
		fetcher:       params.Fetcher,
		logger:        params.Logger,
		state:         StateUninitialized,
		settled:       make(chan struct{}),
	}

	s.startDiscovery()
	return s, nil
}

// OnTimeChanged does nothing; prefetch is the caching decorator's job
func (s *HSDSSource) OnTimeChanged(ctx context.Context, instant series.PlaybackInstant) {}

// Get fetches the value grid for the hour containing timestamp
func (s *HSDSSource) Get(ctx context.Context, timestamp time.Time) (*series.Shape, error) {
	s.mu.RLock()
	state := s.state
	link := s.valueLink
	corners := s.corners
	fromData := s.gridFromData
	discoveryErr := s.discoveryErr
	s.mu.RUnlock()

	switch state {
	case StateReady:
	case StateFailed:
		return nil, discoveryErr
	default:
		return nil, errors.NewConfigurationNotReadyError(
			fmt.Sprintf("configuration not yet loaded (%s)", state))
	}

	hours := s.HourOffset(timestamp)
	if hours < 0 {
		return nil, errors.NewTimeOutOfRangeError(fmt.Sprintf(
			"time %s is before the data epoch %s", series.CanonicalKey(timestamp), series.CanonicalKey(s.epoch)))
	}

	selectString := s.SelectString(hours)
	publicURL := fmt.Sprintf("%s/datasets/%s/value?select=%s&host=%s",
		s.baseURL, link.ID, selectString, url.QueryEscape(s.domain))

	var resp hsdsValue
	if err := getJSON(ctx, s.fetcher, s.withAPIKey(publicURL), &resp); err != nil {
		return nil, err
	}
	if len(resp.Value) == 0 {
		return nil, errors.NewMalformedResponseError("value response has no time slice", nil)
	}

	values := resp.Value[0]
	nx, ny := s.cellCounts()
	if len(values) != nx {
		return nil, errors.NewMalformedResponseError(
			fmt.Sprintf("value response has %d rows, expected %d", len(values), nx), nil)
	}

	shape := series.NewShape(timestamp, HSDSSourceName, publicURL)
	field := s.step.MeasurementField()
	for a, row := range values {
		if len(row) != ny {
			return nil, errors.NewMalformedResponseError(
				fmt.Sprintf("value row %d has %d columns, expected %d", a, len(row), ny), nil)
		}
		for b, v := range row {
			if math.IsNaN(v) {
				continue
			}
			feature := geojson.NewFeature(orb.Polygon{cellRing(corners, a, b, fromData)})
			feature.Properties[field] = v
			shape.Append(feature)
		}
	}
	return shape, nil
}

// HourOffset is the number of whole hours between the epoch and timestamp
func (s *HSDSSource) HourOffset(timestamp time.Time) int {
	return int(math.Round(timestamp.UTC().Sub(s.epoch).Hours()))
}

// SelectString builds the hyperslab selection for one hour over the sampled
// spatial window, e.g. [h:h+1,0:1601:32,0:2975:60]
func (s *HSDSSource) SelectString(hours int) string {
	return fmt.Sprintf("[%d:%d,%s]", hours, hours+1, s.geographicSelect())
}

func (s *HSDSSource) geographicSelect() string {
	xs, ys := s.skips()
	return fmt.Sprintf("%d:%d:%d,%d:%d:%d",
		s.xDomain[0], s.xDomain[1], xs,
		s.yDomain[0], s.yDomain[1], ys)
}

func (s *HSDSSource) skips() (int, int) {
	xs := int(math.Round(float64(s.xDomain[1]-s.xDomain[0]) / float64(s.divisor)))
	ys := int(math.Round(float64(s.yDomain[1]-s.yDomain[0]) / float64(s.divisor)))
	if xs < 1 {
		xs = 1
	}
	if ys < 1 {
		ys = 1
	}
	return xs, ys
}

// cellCounts is the number of samples a strided selection yields per axis
func (s *HSDSSource) cellCounts() (int, int) {
	xs, ys := s.skips()
	nx := (s.xDomain[1] - s.xDomain[0] + xs - 1) / xs
	ny := (s.yDomain[1] - s.yDomain[0] + ys - 1) / ys
	return nx, ny
}

// cellRing builds the polygon of cell (a, b) from its four corner samples.
// Cells from the projected grid are axis-aligned in lon/lat.
func cellRing(corners [][]geometry.Coordinate, a, b int, fromData bool) orb.Ring {
	if !fromData {
		return geometry.NewRegion(corners[a][b], corners[a+1][b+1]).ClosedPolygon()
	}
	return orb.Ring{
		corners[a][b].Point(),
		corners[a+1][b].Point(),
		corners[a+1][b+1].Point(),
		corners[a][b+1].Point(),
		corners[a][b].Point(),
	}
}

// WaitReady blocks until the current discovery attempt has finished and
// returns its error, if any
func (s *HSDSSource) WaitReady(ctx context.Context) error {
	s.mu.RLock()
	settled := s.settled
	s.mu.RUnlock()

	select {
	case <-settled:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discoveryErr
}

// State returns the discovery state
func (s *HSDSSource) State() DiscoveryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status reports readiness for health checks
func (s *HSDSSource) Status() ports.SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := ports.SourceStatus{Backend: HSDSSourceName, Detail: s.state.String()}
	switch s.state {
	case StateReady:
		status.State = ports.SourceStateReady
	case StateFailed:
		status.State = ports.SourceStateFailed
		if s.discoveryErr != nil {
			status.Detail = s.discoveryErr.Error()
		}
	default:
		status.State = ports.SourceStateLoading
	}
	return status
}

// Rediscover restarts discovery after a failure. It returns false when the
// source is not in the failed state.
func (s *HSDSSource) Rediscover(ctx context.Context) bool {
	s.mu.Lock()
	if s.state != StateFailed {
		s.mu.Unlock()
		return false
	}
	s.state = StateUninitialized
	s.discoveryErr = nil
	s.settled = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("Retrying HSDS discovery", ports.F("series", s.seriesID))
	s.startDiscovery()
	return true
}

func (s *HSDSSource) startDiscovery() {
	go s.discover(context.Background())
}

func (s *HSDSSource) setState(state DiscoveryState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *HSDSSource) discover(ctx context.Context) {
	link, corners, fromData, err := s.runDiscovery(ctx)

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
		s.discoveryErr = err
	} else {
		s.state = StateReady
		s.valueLink = link
		s.corners = corners
		s.gridFromData = fromData
	}
	settled := s.settled
	s.mu.Unlock()
	close(settled)

	if err != nil {
		s.logger.Error("HSDS discovery failed", ports.F("series", s.seriesID), ports.F("error", err))
		return
	}
	s.logger.Info("HSDS discovery completed",
		ports.F("series", s.seriesID),
		ports.F("dataset", link.ID),
		ports.F("coordinates_from_archive", fromData))
}

func (s *HSDSSource) runDiscovery(ctx context.Context) (hsdsLink, [][]geometry.Coordinate, bool, error) {
	s.setState(StateDiscoveringRoot)

	domainURL := fmt.Sprintf("%s/?host=%s", s.baseURL, url.QueryEscape(s.domain))
	var domain hsdsHrefs
	if err := getJSON(ctx, s.fetcher, s.withAPIKey(domainURL), &domain); err != nil {
		return hsdsLink{}, nil, false, err
	}
	rootURL, err := findHref(domain.Hrefs, "root")
	if err != nil {
		return hsdsLink{}, nil, false, err
	}

	var root hsdsHrefs
	if err := getJSON(ctx, s.fetcher, s.withAPIKey(rootURL), &root); err != nil {
		return hsdsLink{}, nil, false, err
	}
	linksURL, err := findHref(root.Hrefs, "links")
	if err != nil {
		return hsdsLink{}, nil, false, err
	}

	s.setState(StateDiscoveringLinks)

	var links hsdsLinks
	if err := getJSON(ctx, s.fetcher, s.withAPIKey(linksURL), &links); err != nil {
		return hsdsLink{}, nil, false, err
	}
	valueLink, found := findLink(links.Links, s.variable)
	if !found || valueLink.ID == "" {
		return hsdsLink{}, nil, false, errors.NewMalformedResponseError(
			fmt.Sprintf("archive has no dataset titled %q", s.variable), nil)
	}

	s.setState(StateFetchingCoordinateGrid)

	if coordLink, ok := findLink(links.Links, s.coordVariable); ok && s.coordVariable != "" && coordLink.ID != "" {
		corners, err := s.fetchCoordinateGrid(ctx, coordLink)
		if err == nil {
			return valueLink, corners, true, nil
		}
		s.logger.Warn("Falling back to projected grid coordinates",
			ports.F("series", s.seriesID), ports.F("error", err))
	}
	return valueLink, s.projectedCorners(), false, nil
}

func (s *HSDSSource) fetchCoordinateGrid(ctx context.Context, link hsdsLink) ([][]geometry.Coordinate, error) {
	coordURL := fmt.Sprintf("%s/datasets/%s/value?select=[%s]&host=%s",
		s.baseURL, link.ID, s.geographicSelect(), url.QueryEscape(s.domain))

	var resp hsdsValue
	if err := getJSON(ctx, s.fetcher, s.withAPIKey(coordURL), &resp); err != nil {
		return nil, err
	}

	nx, ny := s.cellCounts()
	if nx < 2 || ny < 2 {
		return nil, errors.NewMalformedResponseError("coordinate grid too small to extrapolate", nil)
	}
	if len(resp.Value) != nx {
		return nil, errors.NewMalformedResponseError(
			fmt.Sprintf("coordinate grid has %d rows, expected %d", len(resp.Value), nx), nil)
	}

	corners := make([][]geometry.Coordinate, nx+1)
	for a := 0; a < nx; a++ {
		if len(resp.Value[a]) != ny {
			return nil, errors.NewMalformedResponseError(
				fmt.Sprintf("coordinate row %d has %d columns, expected %d", a, len(resp.Value[a]), ny), nil)
		}
		corners[a] = make([]geometry.Coordinate, ny+1)
		for b := 0; b < ny; b++ {
			pair := resp.Value[a][b]
			if len(pair) < 2 {
				return nil, errors.NewMalformedResponseError("coordinate sample is not a (lat, lon) pair", nil)
			}
			corners[a][b] = geometry.NewCoordinate(pair[1], pair[0])
		}
		corners[a][ny] = extrapolate(corners[a][ny-2], corners[a][ny-1])
	}
	corners[nx] = make([]geometry.Coordinate, ny+1)
	for b := 0; b <= ny; b++ {
		corners[nx][b] = extrapolate(corners[nx-2][b], corners[nx-1][b])
	}
	return corners, nil
}

// projectedCorners derives the corner lattice from the archive's Lambert
// conformal conic grid
func (s *HSDSSource) projectedCorners() [][]geometry.Coordinate {
	nx, ny := s.cellCounts()
	xs, ys := s.skips()

	corners := make([][]geometry.Coordinate, nx+1)
	for a := 0; a <= nx; a++ {
		corners[a] = make([]geometry.Coordinate, ny+1)
		for b := 0; b <= ny; b++ {
			i := float64(s.xDomain[0] + a*xs)
			j := float64(s.yDomain[0] + b*ys)
			corners[a][b] = s.grid.IndexToLonLat(i, j)
		}
	}
	return corners
}

func (s *HSDSSource) withAPIKey(raw string) string {
	if s.apiKey == "" {
		return raw
	}
	sep := "&"
	if !strings.Contains(raw, "?") {
		sep = "?"
	}
	return raw + sep + "api_key=" + url.QueryEscape(s.apiKey)
}

func findHref(hrefs []hsdsHref, rel string) (string, error) {
	for _, h := range hrefs {
		if h.Rel == rel && h.Href != "" {
			return h.Href, nil
		}
	}
	return "", errors.NewMalformedResponseError(fmt.Sprintf("archive response has no %q href", rel), nil)
}

func findLink(links []hsdsLink, title string) (hsdsLink, bool) {
	for _, l := range links {
		if l.Title == title {
			return l, true
		}
	}
	return hsdsLink{}, false
}

func extrapolate(prev, last geometry.Coordinate) geometry.Coordinate {
	return geometry.NewCoordinate(2*last.X-prev.X, 2*last.Y-prev.Y)
}
