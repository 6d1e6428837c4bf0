package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDefinition() Definition {
	return Definition{
		ID:       "measdaily",
		Name:     "Measurement Daily",
		Color:    "#aa2e25",
		URL:      "https://x/measdaily/",
		Type:     BackendFlatStore,
		StepSize: Daily,
	}
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Definition)
		wantErr bool
	}{
		{"Valid", func(d *Definition) {}, false},
		{"MissingID", func(d *Definition) { d.ID = "" }, true},
		{"BadColor", func(d *Definition) { d.Color = "red" }, true},
		{"BadURL", func(d *Definition) { d.URL = "not a url" }, true},
		{"UnknownBackend", func(d *Definition) { d.Type = "ftp" }, true},
		{"MissingStep", func(d *Definition) { d.StepSize = StepSize{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(&def)

			err := def.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCatalog(t *testing.T) {
	assert.Error(t, ValidateCatalog(nil))

	second := validDefinition()
	second.ID = "meashourly"
	second.StepSize = Hourly
	assert.NoError(t, ValidateCatalog([]Definition{validDefinition(), second}))

	err := ValidateCatalog([]Definition{validDefinition(), validDefinition()})
	assert.ErrorContains(t, err, "duplicate series id")
}

func TestBackendType_IsValid(t *testing.T) {
	assert.True(t, BackendFlatStore.IsValid())
	assert.True(t, BackendHSDS.IsValid())
	assert.True(t, BackendCustomAPI.IsValid())
	assert.False(t, BackendType("s3").IsValid())
}
