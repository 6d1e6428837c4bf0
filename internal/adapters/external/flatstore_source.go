package external

import (
	"context"
	"fmt"
	"time"

	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// FlatStoreSourceName is the source property of flat-store shapes
const FlatStoreSourceName = "flat-store"

// AlignmentPolicy decides whether requests off the step boundary are rejected
type AlignmentPolicy string

const (
	AlignmentStrict AlignmentPolicy = "strict"
	AlignmentNone   AlignmentPolicy = "none"
)

// IsValid checks if the policy is known
func (p AlignmentPolicy) IsValid() bool {
	return p == AlignmentStrict || p == AlignmentNone
}

// FlatStoreSource serves one object per timestamp from a URL prefix
type FlatStoreSource struct {
	seriesID  string
	urlPrefix string
	step      series.StepSize
	alignment AlignmentPolicy
	fetcher   BackendFetcher
	logger    ports.Logger
}

// FlatStoreSourceParams holds parameters for creating a flat-store source
type FlatStoreSourceParams struct {
	SeriesID  string
	URLPrefix string
	StepSize  series.StepSize
	Alignment AlignmentPolicy
	Fetcher   BackendFetcher
	Logger    ports.Logger
}

// NewFlatStoreSource creates a new flat-store data source
func NewFlatStoreSource(params FlatStoreSourceParams) (*FlatStoreSource, error) {
	if params.URLPrefix == "" {
		return nil, errors.NewConfigurationError("flat-store URL prefix cannot be empty", nil)
	}
	if err := params.StepSize.Validate(); err != nil {
		return nil, errors.NewConfigurationError("invalid flat-store step size", err)
	}
	if params.Fetcher == nil {
		return nil, errors.NewConfigurationError("flat-store fetcher cannot be nil", nil)
	}

	alignment := params.Alignment
	if alignment == "" {
		alignment = AlignmentStrict
	}
	if !alignment.IsValid() {
		return nil, errors.NewConfigurationError(fmt.Sprintf("unknown alignment policy: %s", alignment), nil)
	}

	return &FlatStoreSource{
		seriesID:  params.SeriesID,
		urlPrefix: params.URLPrefix,
		step:      params.StepSize,
		alignment: alignment,
		fetcher:   params.Fetcher,
		logger:    params.Logger,
	}, nil
}

// OnTimeChanged does nothing; prefetch is the caching decorator's job
func (s *FlatStoreSource) OnTimeChanged(ctx context.Context, instant series.PlaybackInstant) {}

// Get fetches the object for timestamp
func (s *FlatStoreSource) Get(ctx context.Context, timestamp time.Time) (*series.Shape, error) {
	if s.alignment == AlignmentStrict && !s.step.Aligned(timestamp) {
		return nil, errors.NewTimeMisalignedError(fmt.Sprintf(
			"no data for this time granularity: %s is not on a %s boundary",
			series.CanonicalKey(timestamp), s.step.Unit))
	}

	url := s.ObjectURL(timestamp)
	body, err := s.fetcher.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	features, err := decodeFeatures(body)
	if err != nil {
		return nil, err
	}

	shape := series.NewShape(timestamp, FlatStoreSourceName, s.urlPrefix)
	shape.Features = features
	return shape, nil
}

// ObjectURL returns the address of the object holding timestamp
func (s *FlatStoreSource) ObjectURL(timestamp time.Time) string {
	return s.urlPrefix + series.ObjectKey(timestamp)
}
