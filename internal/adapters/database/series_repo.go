package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// SeriesModel represents the database model for catalog entries
type SeriesModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	Position    int    `gorm:"index;not null;default:0"`
	Name        string `gorm:"not null"`
	Color       string `gorm:"size:7;not null"`
	URL         string `gorm:"not null"`
	Type        string `gorm:"size:16;not null"`
	StepSize    string `gorm:"size:16;not null"`
	Unit        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SeriesModel) TableName() string {
	return "data_series"
}

// SeriesRepositoryAdapter implements the SeriesRepository port using GORM
type SeriesRepositoryAdapter struct {
	db *gorm.DB
}

// NewSeriesRepositoryAdapter creates a new series repository adapter
func NewSeriesRepositoryAdapter(db *gorm.DB) *SeriesRepositoryAdapter {
	return &SeriesRepositoryAdapter{db: db}
}

// Migrate creates or updates the catalog table
func (r *SeriesRepositoryAdapter) Migrate() error {
	if err := r.db.AutoMigrate(&SeriesModel{}); err != nil {
		return errors.NewDatabaseError("failed to migrate series table", err)
	}
	return nil
}

// List returns the catalog in insertion order
func (r *SeriesRepositoryAdapter) List(ctx context.Context) ([]series.Definition, error) {
	var models []SeriesModel
	result := r.db.WithContext(ctx).Order("position ASC").Order("id ASC").Find(&models)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("failed to list series", result.Error)
	}

	defs := make([]series.Definition, 0, len(models))
	for i := range models {
		def, err := r.modelToDefinition(&models[i])
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Save inserts or replaces a catalog entry. New entries go to the end.
func (r *SeriesRepositoryAdapter) Save(ctx context.Context, def series.Definition) error {
	if err := def.Validate(); err != nil {
		return errors.NewValidationError(err.Error())
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing SeriesModel
		position := 0

		err := tx.Where("id = ?", def.ID).Take(&existing).Error
		switch {
		case err == nil:
			position = existing.Position
		case err == gorm.ErrRecordNotFound:
			var count int64
			if err := tx.Model(&SeriesModel{}).Count(&count).Error; err != nil {
				return errors.NewDatabaseError("failed to count series", err)
			}
			position = int(count)
		default:
			return errors.NewDatabaseError("failed to look up series", err)
		}

		model := r.definitionToModel(def, position)
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(model)
		if result.Error != nil {
			return errors.NewDatabaseError("failed to save series", result.Error)
		}
		return nil
	})
}

// Count returns the number of catalog entries
func (r *SeriesRepositoryAdapter) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&SeriesModel{}).Count(&count).Error; err != nil {
		return 0, errors.NewDatabaseError("failed to count series", err)
	}
	return count, nil
}

// SeedIfEmpty stores defs when the table holds no entries yet and reports
// whether it did
func SeedIfEmpty(ctx context.Context, repo ports.SeriesRepository, defs []series.Definition) (bool, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	for _, def := range defs {
		if err := repo.Save(ctx, def); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *SeriesRepositoryAdapter) definitionToModel(def series.Definition, position int) *SeriesModel {
	return &SeriesModel{
		ID:          def.ID,
		Position:    position,
		Name:        def.Name,
		Color:       def.Color,
		URL:         def.URL,
		Type:        string(def.Type),
		StepSize:    def.StepSize.String(),
		Unit:        def.Unit,
		Description: def.Description,
	}
}

func (r *SeriesRepositoryAdapter) modelToDefinition(model *SeriesModel) (series.Definition, error) {
	step, err := series.ParseStepSize(model.StepSize)
	if err != nil {
		return series.Definition{}, errors.NewDatabaseError("stored series "+model.ID+" has an invalid step size", err)
	}

	return series.Definition{
		ID:          model.ID,
		Name:        model.Name,
		Color:       model.Color,
		URL:         model.URL,
		Type:        series.BackendType(model.Type),
		StepSize:    step,
		Unit:        model.Unit,
		Description: model.Description,
	}, nil
}
