package series

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// BackendType tags which adapter serves a series
type BackendType string

const (
	BackendFlatStore BackendType = "flat-store"
	BackendHSDS      BackendType = "hsds"
	BackendCustomAPI BackendType = "custom-api"
)

// IsValid checks if the backend type is known
func (b BackendType) IsValid() bool {
	return b == BackendFlatStore || b == BackendHSDS || b == BackendCustomAPI
}

// Definition is a static catalog entry describing one data series
type Definition struct {
	ID          string      `json:"id" validate:"required,max=64"`
	Name        string      `json:"name" validate:"required"`
	Color       string      `json:"color" validate:"required,hexcolor"`
	URL         string      `json:"url" validate:"required,url"`
	Type        BackendType `json:"type" validate:"required,oneof=flat-store hsds custom-api"`
	StepSize    StepSize    `json:"stepSize"`
	Unit        string      `json:"unit"`
	Description string      `json:"description"`
}

var definitionValidator = validator.New()

// Validate checks the struct tags and the step size
func (d Definition) Validate() error {
	if err := definitionValidator.Struct(d); err != nil {
		return fmt.Errorf("series %q: %w", d.ID, err)
	}
	if err := d.StepSize.Validate(); err != nil {
		return fmt.Errorf("series %q: %w", d.ID, err)
	}
	return nil
}

// ValidateCatalog validates every entry and rejects duplicate ids
func ValidateCatalog(defs []Definition) error {
	if len(defs) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return err
		}
		if seen[def.ID] {
			return fmt.Errorf("duplicate series id %q", def.ID)
		}
		seen[def.ID] = true
	}
	return nil
}
