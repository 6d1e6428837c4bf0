package config

import (
	"strings"

	"solarviz.app/internal/core/series"
)

const irradianceUnit = "W/m²"

type seriesFamily struct {
	id    string
	name  string
	color string
}

var seriesFamilies = []seriesFamily{
	{id: "meas", name: "Measured", color: "#aa2e25"},
	{id: "arima", name: "ARIMA", color: "#1769aa"},
	{id: "nn", name: "Neural Net", color: "#00695f"},
}

var granularities = []struct {
	suffix string
	label  string
	step   series.StepSize
	unit   string
}{
	{suffix: "hourly", label: "hourly", step: series.Hourly, unit: irradianceUnit},
	{suffix: "daily", label: "daily", step: series.Daily, unit: "Wh/m²"},
	{suffix: "monthly", label: "monthly", step: series.Monthly, unit: "kWh/m²"},
	{suffix: "yearly", label: "yearly", step: series.Yearly, unit: "kWh/m²"},
}

// DefaultCatalog builds the series served when the catalog is static.
// Daily and coarser series live in the flat store. Measured hourly data
// comes from the scientific archive and the predicted hourly series from
// the custom API, when those backends are configured.
func (c *Config) DefaultCatalog() []series.Definition {
	prefix := strings.TrimRight(c.FlatStore.URLPrefix, "/") + "/"

	var defs []series.Definition
	for _, g := range granularities {
		for _, family := range seriesFamilies {
			def := series.Definition{
				ID:       family.id + g.suffix,
				Name:     family.name + " (" + g.label + ")",
				Color:    family.color,
				StepSize: g.step,
				Unit:     g.unit,
			}

			switch {
			case g.step.Unit != series.StepUnitHour:
				def.Type = series.BackendFlatStore
				def.URL = prefix + def.ID + "/"
				def.Description = family.name + " " + g.label + " irradiance from the object store"
			case family.id == "meas" && c.HSDS.Enabled:
				def.Type = series.BackendHSDS
				def.URL = c.HSDS.BaseURL
				def.Description = "Measured hourly " + c.HSDS.Variable + " from the HSDS archive"
			case family.id != "meas" && c.CustomAPI.Host != "":
				def.Type = series.BackendCustomAPI
				def.URL = c.CustomAPI.Host
				def.Description = family.name + " hourly forecast from the prediction API"
			default:
				continue
			}

			defs = append(defs, def)
		}
	}
	return defs
}
