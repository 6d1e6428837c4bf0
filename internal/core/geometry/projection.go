package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// SphereRadius is the radius used by the "+ellps=sphere" proj definition
const SphereRadius = 6370997.0

// MercatorToLonLat converts EPSG:3857 metres to lon/lat
func MercatorToLonLat(c Coordinate) Coordinate {
	return c.LonLat(project.Mercator.ToWGS84)
}

// LonLatToMercator converts lon/lat to EPSG:3857 metres
func LonLatToMercator(c Coordinate) Coordinate {
	return c.LonLat(project.WGS84.ToMercator)
}

// LambertConformalConic is a spherical two-standard-parallel Lambert
// conformal conic projection with no false easting or northing.
type LambertConformalConic struct {
	n      float64
	f      float64
	rho0   float64
	lon0   float64
	radius float64
}

// NewLambertConformalConic builds the projection from degrees
func NewLambertConformalConic(lat1, lat2, lat0, lon0, radius float64) *LambertConformalConic {
	phi1, phi2, phi0 := radians(lat1), radians(lat2), radians(lat0)

	var n float64
	if math.Abs(phi1-phi2) < 1e-10 {
		n = math.Sin(phi1)
	} else {
		n = math.Log(math.Cos(phi1)/math.Cos(phi2)) /
			math.Log(math.Tan(math.Pi/4+phi2/2)/math.Tan(math.Pi/4+phi1/2))
	}
	f := math.Cos(phi1) * math.Pow(math.Tan(math.Pi/4+phi1/2), n) / n

	return &LambertConformalConic{
		n:      n,
		f:      f,
		rho0:   radius * f / math.Pow(math.Tan(math.Pi/4+phi0/2), n),
		lon0:   radians(lon0),
		radius: radius,
	}
}

// NRELProjection is the grid projection of the NREL WIND Toolkit archive:
// +proj=lcc +lat_1=30 +lat_2=60 +lat_0=38.47240422490422 +lon_0=-96.0 +ellps=sphere
func NRELProjection() *LambertConformalConic {
	return NewLambertConformalConic(30, 60, 38.47240422490422, -96.0, SphereRadius)
}

// Forward projects lon/lat degrees to metres
func (p *LambertConformalConic) Forward(lonLat Coordinate) Coordinate {
	phi := radians(lonLat.Y)
	rho := p.radius * p.f / math.Pow(math.Tan(math.Pi/4+phi/2), p.n)
	theta := p.n * (radians(lonLat.X) - p.lon0)
	return Coordinate{
		X: rho * math.Sin(theta),
		Y: p.rho0 - rho*math.Cos(theta),
	}
}

// Inverse projects metres back to lon/lat degrees
func (p *LambertConformalConic) Inverse(xy Coordinate) Coordinate {
	dy := p.rho0 - xy.Y
	rho := math.Copysign(math.Hypot(xy.X, dy), p.n)
	x, y := xy.X, dy
	if p.n < 0 {
		x, y = -x, -y
	}
	theta := math.Atan2(x, y)

	var phi float64
	if rho == 0 {
		phi = math.Copysign(math.Pi/2, p.n)
	} else {
		phi = 2*math.Atan(math.Pow(p.radius*p.f/rho, 1/p.n)) - math.Pi/2
	}
	return Coordinate{
		X: degrees(theta/p.n + p.lon0),
		Y: degrees(phi),
	}
}

// ToWGS84 adapts Inverse to an orb projection
func (p *LambertConformalConic) ToWGS84() orb.Projection {
	return func(pt orb.Point) orb.Point {
		return p.Inverse(Coordinate{X: pt[0], Y: pt[1]}).Point()
	}
}

// Grid maps integral archive indices onto a projected plane. Index i walks
// the y axis and index j walks the x axis.
type Grid struct {
	Projection *LambertConformalConic
	OriginX    float64
	OriginY    float64
	CellSize   float64
}

// NRELGrid is the 2 km WIND Toolkit grid
func NRELGrid() Grid {
	return Grid{
		Projection: NRELProjection(),
		OriginX:    -2975465.0557618504,
		OriginY:    -1601248.319293951,
		CellSize:   2000,
	}
}

// IndexToLonLat converts a fractional (i, j) grid index into lon/lat
func (g Grid) IndexToLonLat(i, j float64) Coordinate {
	return g.Projection.Inverse(Coordinate{
		X: g.OriginX + j*g.CellSize,
		Y: g.OriginY + i*g.CellSize,
	})
}

// LonLatToIndex converts lon/lat into the nearest (i, j) grid index
func (g Grid) LonLatToIndex(lonLat Coordinate) (int, int) {
	xy := g.Projection.Forward(lonLat)
	i := int(math.Round((xy.Y - g.OriginY) / g.CellSize))
	j := int(math.Round((xy.X - g.OriginX) / g.CellSize))
	return i, j
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
