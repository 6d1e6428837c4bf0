package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Region is an axis-aligned box spanned by two opposite corners. The corners
// may be given in any order.
type Region struct {
	Pt1 Coordinate
	Pt2 Coordinate
}

// NewRegion creates a region from two opposite corners
func NewRegion(pt1, pt2 Coordinate) Region {
	return Region{Pt1: pt1, Pt2: pt2}
}

// XLength returns the width of the region
func (r Region) XLength() float64 {
	return math.Abs(r.Pt2.X - r.Pt1.X)
}

// YLength returns the height of the region
func (r Region) YLength() float64 {
	return math.Abs(r.Pt2.Y - r.Pt1.Y)
}

// XDomain returns the [min, max] extent along the x axis
func (r Region) XDomain() [2]float64 {
	return [2]float64{math.Min(r.Pt1.X, r.Pt2.X), math.Max(r.Pt1.X, r.Pt2.X)}
}

// YDomain returns the [min, max] extent along the y axis
func (r Region) YDomain() [2]float64 {
	return [2]float64{math.Min(r.Pt1.Y, r.Pt2.Y), math.Max(r.Pt1.Y, r.Pt2.Y)}
}

// Bound returns the region as an orb bound
func (r Region) Bound() orb.Bound {
	x, y := r.XDomain(), r.YDomain()
	return orb.Bound{Min: orb.Point{x[0], y[0]}, Max: orb.Point{x[1], y[1]}}
}

// ClosedPolygon returns the region outline as a closed five point ring,
// counter-clockwise from the min corner. The first and last points are equal.
func (r Region) ClosedPolygon() orb.Ring {
	x, y := r.XDomain(), r.YDomain()
	return orb.Ring{
		{x[0], y[0]},
		{x[1], y[0]},
		{x[1], y[1]},
		{x[0], y[1]},
		{x[0], y[0]},
	}
}

// String renders both corners
func (r Region) String() string {
	return fmt.Sprintf("[%s, %s]", r.Pt1, r.Pt2)
}

// HDMS renders both lon/lat corners in degrees-minutes-seconds form
func (r Region) HDMS() string {
	return fmt.Sprintf("[%s; %s]", r.Pt1.HDMS(), r.Pt2.HDMS())
}
