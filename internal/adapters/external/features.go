package external

import (
	"bytes"
	"encoding/json"

	"github.com/paulmach/orb/geojson"
	"solarviz.app/pkg/errors"
)

// decodeFeatures accepts either a bare JSON array of GeoJSON features or a
// complete FeatureCollection
func decodeFeatures(body []byte) ([]*geojson.Feature, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.NewMalformedResponseError("empty payload", nil)
	}

	switch trimmed[0] {
	case '[':
		var features []*geojson.Feature
		if err := json.Unmarshal(trimmed, &features); err != nil {
			return nil, errors.NewMalformedResponseError("payload is not a feature array", err)
		}
		return compactFeatures(features), nil
	case '{':
		fc, err := geojson.UnmarshalFeatureCollection(trimmed)
		if err != nil {
			return nil, errors.NewMalformedResponseError("payload is not a feature collection", err)
		}
		return compactFeatures(fc.Features), nil
	default:
		return nil, errors.NewMalformedResponseError("payload is neither an array nor an object", nil)
	}
}

func compactFeatures(features []*geojson.Feature) []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(features))
	for _, f := range features {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}
