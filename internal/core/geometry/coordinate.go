// Package geometry holds the coordinate and region value types used to build
// feature geometries, plus the projection conversions between the archive's
// native grids and longitude/latitude.
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Coordinate is a pair of map-projection coordinates. Which projection the
// pair is expressed in is decided by the call site.
type Coordinate struct {
	X float64
	Y float64
}

// NewCoordinate creates a coordinate from its components
func NewCoordinate(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y}
}

// Point returns the coordinate as an orb point
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.X, c.Y}
}

// Array returns the coordinate as an [x, y] slice
func (c Coordinate) Array() []float64 {
	return []float64{c.X, c.Y}
}

// LonLat converts the coordinate to longitude/latitude using the given
// projection. A nil projection means the coordinate is already lon/lat.
func (c Coordinate) LonLat(toWGS84 orb.Projection) Coordinate {
	if toWGS84 == nil {
		return c
	}
	p := toWGS84(c.Point())
	return Coordinate{X: p[0], Y: p[1]}
}

// String renders the coordinate rounded to whole units
func (c Coordinate) String() string {
	return fmt.Sprintf("(%.0f, %.0f)", c.X, c.Y)
}

// HDMS renders a lon/lat coordinate as hemisphere, degrees, minutes and
// seconds, latitude first: 47° 30′ 00″ N 7° 30′ 00″ E
func (c Coordinate) HDMS() string {
	return degreesToHDMS("NS", c.Y) + " " + degreesToHDMS("EW", c.X)
}

func degreesToHDMS(hemispheres string, degrees float64) string {
	normalized := math.Mod(degrees+180, 360)
	if normalized < 0 {
		normalized += 360
	}
	normalized -= 180

	totalSeconds := int64(math.Round(math.Abs(normalized) * 3600))
	deg := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	out := fmt.Sprintf("%d° %02d′ %02d″", deg, minutes, seconds)
	if totalSeconds == 0 {
		return out
	}
	hemisphere := hemispheres[0]
	if normalized < 0 {
		hemisphere = hemispheres[1]
	}
	return out + " " + string(hemisphere)
}
