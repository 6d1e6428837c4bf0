package external

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// CustomAPISourceName is the source property of custom-API shapes
const CustomAPISourceName = "custom-api"

// DefaultLookahead is how far past the current instant the window query reaches
const DefaultLookahead = 48 * time.Hour

type customAPIEntry struct {
	Time string `json:"time"`
	URL  string `json:"url"`
}

type urlInfo struct {
	url       string
	retrieved time.Time
}

// CustomAPISource serves only data it was told about by a window query.
// Every time change asks the API which payloads exist in the next few days
// and starts fetching each one not already in flight.
type CustomAPISource struct {
	seriesID  string
	host      string
	lookahead time.Duration
	fetcher   BackendFetcher
	logger    ports.Logger

	windows singleflight.Group

	mu   sync.Mutex
	urls map[string]urlInfo
	data map[string]*series.Future
}

// CustomAPISourceParams holds parameters for creating a custom-API source
type CustomAPISourceParams struct {
	SeriesID  string
	Host      string
	Lookahead time.Duration
	Fetcher   BackendFetcher
	Logger    ports.Logger
}

// NewCustomAPISource creates a new custom-API data source
func NewCustomAPISource(params CustomAPISourceParams) (*CustomAPISource, error) {
	if params.Host == "" {
		return nil, errors.NewConfigurationError("custom API host cannot be empty", nil)
	}
	if params.SeriesID == "" {
		return nil, errors.NewConfigurationError("custom API series id cannot be empty", nil)
	}
	if params.Fetcher == nil {
		return nil, errors.NewConfigurationError("custom API fetcher cannot be nil", nil)
	}
	if params.Logger == nil {
		return nil, errors.NewConfigurationError("custom API logger cannot be nil", nil)
	}

	lookahead := params.Lookahead
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}

	return &CustomAPISource{
		seriesID:  params.SeriesID,
		host:      strings.TrimRight(params.Host, "/"),
		lookahead: lookahead,
		fetcher:   params.Fetcher,
		logger:    params.Logger,
		urls:      make(map[string]urlInfo),
		data:      make(map[string]*series.Future),
	}, nil
}

// OnTimeChanged queries the window in the background and returns at once
func (s *CustomAPISource) OnTimeChanged(ctx context.Context, instant series.PlaybackInstant) {
	detached := context.WithoutCancel(ctx)
	go func() {
		if _, err := s.Prefetch(detached, instant.Current); err != nil {
			s.logger.Warn("Custom API window query failed",
				ports.F("series", s.seriesID),
				ports.F("instant", series.CanonicalKey(instant.Current)),
				ports.F("error", err))
		}
	}()
}

// Prefetch queries the window starting at current and starts a fetch for
// every listed timestamp that is not already fetching. It returns the number
// of fetches started.
func (s *CustomAPISource) Prefetch(ctx context.Context, current time.Time) (int, error) {
	windowURL := s.WindowURL(current)

	result, err, _ := s.windows.Do(windowURL, func() (interface{}, error) {
		var entries []customAPIEntry
		if err := getJSON(ctx, s.fetcher, windowURL, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	})
	if err != nil {
		return 0, err
	}

	entries, ok := result.([]customAPIEntry)
	if !ok {
		return 0, errors.NewMalformedResponseError("unexpected window query result", nil)
	}

	fetchCtx := context.WithoutCancel(ctx)
	now := time.Now()
	started := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		ts, err := parseEntryTime(entry.Time)
		if err != nil || entry.URL == "" {
			s.logger.Warn("Skipping malformed window entry",
				ports.F("series", s.seriesID),
				ports.F("time", entry.Time),
				ports.F("url", entry.URL))
			continue
		}

		key := series.CanonicalKey(ts)
		s.urls[key] = urlInfo{url: entry.URL, retrieved: now}

		if existing, found := s.data[key]; found && !existing.Failed() {
			continue
		}

		payloadURL := entry.URL
		s.data[key] = series.Go(func() (*series.Shape, error) {
			return s.fetchPayload(fetchCtx, payloadURL, ts)
		})
		started++
	}

	return started, nil
}

// Get returns the payload of a timestamp announced by an earlier window
// query. It never starts a request of its own.
func (s *CustomAPISource) Get(ctx context.Context, timestamp time.Time) (*series.Shape, error) {
	key := series.CanonicalKey(timestamp)

	s.mu.Lock()
	future, ok := s.data[key]
	s.mu.Unlock()

	if !ok {
		return nil, errors.NewNoPrefetchedDataError(fmt.Sprintf("data is not available for %s", key))
	}
	return future.Await(ctx)
}

// WindowURL is the address of the window query starting at current
func (s *CustomAPISource) WindowURL(current time.Time) string {
	start := current.UTC()
	end := start.Add(s.lookahead)
	return fmt.Sprintf("%s/api/%s/%s&%s", s.host, s.seriesID, series.InstantString(start), series.InstantString(end))
}

// KnownURL returns the payload address recorded for timestamp
func (s *CustomAPISource) KnownURL(timestamp time.Time) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.urls[series.CanonicalKey(timestamp)]
	return info.url, ok
}

func (s *CustomAPISource) fetchPayload(ctx context.Context, payloadURL string, ts time.Time) (*series.Shape, error) {
	body, err := s.fetcher.GetBytes(ctx, payloadURL)
	if err != nil {
		return nil, err
	}

	features, err := decodeFeatures(body)
	if err != nil {
		return nil, err
	}

	shape := series.NewShape(ts, CustomAPISourceName, payloadURL)
	shape.Features = features
	return shape, nil
}

// parseEntryTime accepts RFC 3339 and zone-less ISO times, which are UTC
func parseEntryTime(raw string) (time.Time, error) {
	if ts, err := series.ParseTimestamp(raw); err == nil {
		return ts, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if ts, err := time.ParseInLocation(layout, strings.TrimSpace(raw), time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid window entry time %q", raw)
}
