package geo

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"
)

// mercator latitude is unbounded at the poles
const maxMercatorLat = 85.05112878

// PlanarProjector. maps lat/lon degrees to a planar mercator frame, x grows east, y grows north.
// the frame uses an earth circumference of 360 units so one unit is one degree of longitude at the equator.
type PlanarProjector struct {
	proj s2.Projection
}

func NewPlanarProjector() *PlanarProjector {
	return &PlanarProjector{proj: s2.NewMercatorProjection(180)}
}

func (p *PlanarProjector) Project(lat, lon float64) (float64, float64) {
	lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
	pt := p.proj.FromLatLng(s2.LatLngFromDegrees(lat, lon))
	return pt.X, pt.Y
}

// Unproject. inverse of Project.
func (p *PlanarProjector) Unproject(x, y float64) (float64, float64) {
	ll := p.proj.ToLatLng(r2.Point{X: x, Y: y})
	return ll.Lat.Degrees(), ll.Lng.Degrees()
}
