package catalog

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"solarviz.app/internal/core/series"
	mocks "solarviz.app/internal/mocks"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

func testDefinitions() []series.Definition {
	return []series.Definition{
		{
			ID:       "measdaily",
			Name:     "Measurement Daily",
			Color:    "#aa2e25",
			URL:      "https://x/measdaily/",
			Type:     series.BackendFlatStore,
			StepSize: series.Daily,
		},
		{
			ID:       "nnhourly",
			Name:     "Neural Network Hourly",
			Color:    "#00695c",
			URL:      "https://api.example.com",
			Type:     series.BackendCustomAPI,
			StepSize: series.Hourly,
		},
	}
}

func testInterval() series.Interval {
	return series.Interval{
		Start: time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2013, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func allowLogging(logger *mocks.Logger) {
	for arity := 1; arity <= 6; arity++ {
		args := make([]interface{}, arity-1)
		for i := range args {
			args[i] = mock.Anything
		}
		logger.EXPECT().Debug(mock.Anything, args...).Maybe()
		logger.EXPECT().Info(mock.Anything, args...).Maybe()
		logger.EXPECT().Warn(mock.Anything, args...).Maybe()
		logger.EXPECT().Error(mock.Anything, args...).Maybe()
	}
}

// spyFactory counts construction calls and hands out one mock per series
type spyFactory struct {
	calls   int32
	sources map[string]*mocks.DataSource
	fail    map[string]error
}

func newSpyFactory(t *testing.T, defs []series.Definition) *spyFactory {
	f := &spyFactory{
		sources: make(map[string]*mocks.DataSource),
		fail:    make(map[string]error),
	}
	for _, def := range defs {
		f.sources[def.ID] = mocks.NewDataSource(t)
	}
	return f
}

func (f *spyFactory) CreateSource(def series.Definition) (ports.DataSource, error) {
	atomic.AddInt32(&f.calls, 1)
	if err, ok := f.fail[def.ID]; ok {
		return nil, err
	}
	return f.sources[def.ID], nil
}

func newTestRegistry(t *testing.T, factory ports.SourceFactory) *Registry {
	logger := mocks.NewLogger(t)
	allowLogging(logger)

	registry, err := NewRegistry(RegistryDependencies{
		Definitions: testDefinitions(),
		Interval:    testInterval(),
		Factory:     factory,
		Logger:      logger,
	})
	require.NoError(t, err)
	return registry
}

func TestNewRegistry_Validation(t *testing.T) {
	logger := mocks.NewLogger(t)
	factory := mocks.NewSourceFactory(t)

	tests := []struct {
		name string
		deps RegistryDependencies
	}{
		{
			name: "MissingFactory",
			deps: RegistryDependencies{Definitions: testDefinitions(), Interval: testInterval(), Logger: logger},
		},
		{
			name: "MissingLogger",
			deps: RegistryDependencies{Definitions: testDefinitions(), Interval: testInterval(), Factory: factory},
		},
		{
			name: "EmptyCatalog",
			deps: RegistryDependencies{Interval: testInterval(), Factory: factory, Logger: logger},
		},
		{
			name: "DuplicateID",
			deps: RegistryDependencies{
				Definitions: append(testDefinitions(), testDefinitions()[0]),
				Interval:    testInterval(),
				Factory:     factory,
				Logger:      logger,
			},
		},
		{
			name: "InvertedInterval",
			deps: RegistryDependencies{
				Definitions: testDefinitions(),
				Interval:    series.Interval{Start: testInterval().End, End: testInterval().Start},
				Factory:     factory,
				Logger:      logger,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, err := NewRegistry(tt.deps)
			assert.Error(t, err)
			assert.Nil(t, registry)
		})
	}
}

func TestRegistry_ConstructsSourcesOnce(t *testing.T) {
	factory := newSpyFactory(t, testDefinitions())
	registry := newTestRegistry(t, factory)

	// Nothing is built before the first access
	assert.Equal(t, int32(0), atomic.LoadInt32(&factory.calls))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = registry.ListSeries()
		}()
	}
	wg.Wait()

	first := registry.Sources()
	second := registry.Sources()

	assert.Equal(t, int32(len(testDefinitions())), atomic.LoadInt32(&factory.calls))
	for id, source := range first {
		assert.Same(t, source, second[id])
		assert.Same(t, factory.sources[id], source)
	}
}

func TestRegistry_ListSeries(t *testing.T) {
	registry := newTestRegistry(t, newSpyFactory(t, testDefinitions()))

	list := registry.ListSeries()
	require.Len(t, list, 2)
	assert.Equal(t, "measdaily", list[0].ID)
	assert.Equal(t, "nnhourly", list[1].ID)

	// Mutating the returned slice does not leak into the catalog
	list[0].Name = "changed"
	assert.Equal(t, "Measurement Daily", registry.ListSeries()[0].Name)
}

func TestRegistry_SeriesByID(t *testing.T) {
	registry := newTestRegistry(t, newSpyFactory(t, testDefinitions()))

	def, err := registry.SeriesByID("nnhourly")
	require.NoError(t, err)
	assert.Equal(t, series.BackendCustomAPI, def.Type)

	_, err = registry.SeriesByID("missing")
	assert.True(t, errors.IsUnknownSeriesError(err))
}

func TestRegistry_Get_RoutesToSource(t *testing.T) {
	factory := newSpyFactory(t, testDefinitions())
	registry := newTestRegistry(t, factory)

	ts := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	shape := series.NewShape(ts, "flat-store", "https://x/measdaily/2010-06-15T000000Z")
	factory.sources["measdaily"].EXPECT().Get(mock.Anything, ts).Return(shape, nil).Once()

	result, err := registry.Get(context.Background(), "measdaily", ts)
	require.NoError(t, err)
	assert.Equal(t, "2010-06-15T00:00:00.000Z", result.Properties.Instant)
}

func TestRegistry_Get_UnknownSeries(t *testing.T) {
	registry := newTestRegistry(t, newSpyFactory(t, testDefinitions()))

	_, err := registry.Get(context.Background(), "unknown", time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.True(t, errors.IsUnknownSeriesError(err))
	assert.Contains(t, err.Error(), `no data source for id "unknown"`)
}

func TestRegistry_Get_OutsideInterval(t *testing.T) {
	registry := newTestRegistry(t, newSpyFactory(t, testDefinitions()))

	_, err := registry.Get(context.Background(), "measdaily", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, errors.IsTimeOutOfRangeError(err))
}

func TestRegistry_Get_PropagatesSourceError(t *testing.T) {
	factory := newSpyFactory(t, testDefinitions())
	registry := newTestRegistry(t, factory)

	ts := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	factory.sources["measdaily"].EXPECT().Get(mock.Anything, ts).
		Return(nil, errors.NewBackendError("status 404", nil)).Once()

	_, err := registry.Get(context.Background(), "measdaily", ts)

	require.Error(t, err)
	assert.True(t, errors.IsBackendError(err))
}

func TestRegistry_FailedConstruction(t *testing.T) {
	factory := newSpyFactory(t, testDefinitions())
	factory.fail["nnhourly"] = stderrors.New("bad host")
	registry := newTestRegistry(t, factory)

	_, err := registry.Get(context.Background(), "nnhourly", time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.IsConfigurationError(err))

	statuses := registry.Statuses()
	assert.Equal(t, ports.SourceStateFailed, statuses["nnhourly"].State)
	assert.Equal(t, ports.SourceStateReady, statuses["measdaily"].State)
}

func TestRegistry_NotifyTimeChanged_FansOut(t *testing.T) {
	factory := newSpyFactory(t, testDefinitions())
	registry := newTestRegistry(t, factory)

	instant := series.PlaybackInstant{
		Current:  time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC),
		StepSize: series.Daily,
	}
	for _, source := range factory.sources {
		source.EXPECT().OnTimeChanged(mock.Anything, instant).Return().Once()
	}

	registry.NotifyTimeChanged(context.Background(), instant)
}

func TestRegistry_Follow(t *testing.T) {
	factory := newSpyFactory(t, testDefinitions())
	registry := newTestRegistry(t, factory)

	instant := series.PlaybackInstant{
		Current:  time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC),
		StepSize: series.Daily,
	}
	next := instant.Advance()
	for _, source := range factory.sources {
		source.EXPECT().OnTimeChanged(mock.Anything, instant).Return().Once()
		source.EXPECT().OnTimeChanged(mock.Anything, next).Return().Once()
	}

	instants := make(chan series.PlaybackInstant, 2)
	instants <- instant
	instants <- next
	close(instants)

	done := make(chan struct{})
	go func() {
		registry.Follow(context.Background(), instants)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after the channel closed")
	}
}

func TestRegistry_DataInterval(t *testing.T) {
	registry := newTestRegistry(t, newSpyFactory(t, testDefinitions()))

	interval := registry.DataInterval()
	assert.Equal(t, 2007, interval.Start.Year())
	assert.Equal(t, 2013, interval.End.Year())
}
