package series

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CRSName is the reference frame of every shape geometry
const CRSName = "EPSG:4326"

// ShapeProperties describes where and when a shape came from
type ShapeProperties struct {
	Instant string `json:"instant"`
	Source  string `json:"source"`
	URL     string `json:"url,omitempty"`
}

// Shape is the normalized payload for a single instant: a feature collection
// in lon/lat plus collection-level properties.
type Shape struct {
	Features   []*geojson.Feature
	Properties ShapeProperties
}

// NewShape creates an empty shape for the given instant
func NewShape(instant time.Time, source, url string) *Shape {
	return &Shape{
		Features: []*geojson.Feature{},
		Properties: ShapeProperties{
			Instant: InstantString(instant),
			Source:  source,
			URL:     url,
		},
	}
}

// Append adds a feature to the shape
func (s *Shape) Append(f *geojson.Feature) {
	s.Features = append(s.Features, f)
}

// FeatureCollection renders the shape as a GeoJSON feature collection with
// "crs" and "properties" foreign members
func (s *Shape) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = s.Features
	fc.ExtraMembers = geojson.Properties{
		"crs": map[string]interface{}{
			"type":       "name",
			"properties": map[string]interface{}{"name": CRSName},
		},
		"properties": map[string]interface{}{
			"instant": s.Properties.Instant,
			"source":  s.Properties.Source,
			"url":     s.Properties.URL,
		},
	}
	return fc
}

// MarshalJSON implements json.Marshaler
func (s *Shape) MarshalJSON() ([]byte, error) {
	return s.FeatureCollection().MarshalJSON()
}

// UnmarshalShape decodes a shape previously produced by MarshalJSON
func UnmarshalShape(data []byte) (*Shape, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	shape := &Shape{Features: fc.Features}
	if shape.Features == nil {
		shape.Features = []*geojson.Feature{}
	}
	if raw, ok := fc.ExtraMembers["properties"]; ok {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encode shape properties: %w", err)
		}
		if err := json.Unmarshal(encoded, &shape.Properties); err != nil {
			return nil, fmt.Errorf("decode shape properties: %w", err)
		}
	}
	return shape, nil
}

// Clone returns a deep copy so callers never share a mutable payload
func (s *Shape) Clone() *Shape {
	if s == nil {
		return nil
	}
	out := &Shape{
		Features:   make([]*geojson.Feature, len(s.Features)),
		Properties: s.Properties,
	}
	for i, f := range s.Features {
		out.Features[i] = cloneFeature(f)
	}
	return out
}

func cloneFeature(f *geojson.Feature) *geojson.Feature {
	if f == nil {
		return nil
	}
	clone := &geojson.Feature{
		ID:         f.ID,
		Type:       f.Type,
		Properties: cloneProperties(f.Properties),
	}
	if f.BBox != nil {
		clone.BBox = append(geojson.BBox(nil), f.BBox...)
	}
	if f.Geometry != nil {
		clone.Geometry = orb.Clone(f.Geometry)
	}
	return clone
}

func cloneProperties(p geojson.Properties) geojson.Properties {
	if p == nil {
		return nil
	}
	out := make(geojson.Properties, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
