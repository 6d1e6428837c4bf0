package ports

import (
	"context"

	"solarviz.app/internal/core/series"
)

// SeriesRepository defines the contract for catalog persistence
type SeriesRepository interface {
	List(ctx context.Context) ([]series.Definition, error)
	Save(ctx context.Context, def series.Definition) error
	Count(ctx context.Context) (int64, error)
}
