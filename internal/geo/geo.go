package geo

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Local positions are meters in a frame whose origin is the dropzone:
// X east, Y up, Z north. Georef maps them to WGS84 longitude/latitude by
// going through spherical mercator (EPSG:3857), where a local meter at the
// dropzone spans 1/cos(latitude) mercator units.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Georef ties the local frame to a point on the globe.
type Georef struct {
	Longitude float64
	Latitude  float64

	originX, originY float64 // dropzone in EPSG:3857
	scale            float64 // mercator units per local meter

	toMercator   transform
	fromMercator transform
}

type transform = func(a, b, c float64) (float64, float64, float64)

// NewGeoref returns a georeference centred on the given dropzone.
func NewGeoref(latitude, longitude float64) (*Georef, error) {
	if math.IsNaN(latitude) || math.IsNaN(longitude) ||
		math.Abs(latitude) >= 85 || math.Abs(longitude) > 180 {
		return nil, ErrInvalidCoordinates
	}
	epsg := wgs84.EPSG()
	g := &Georef{
		Longitude:    longitude,
		Latitude:     latitude,
		scale:        1 / math.Cos(mgl64.DegToRad(latitude)),
		toMercator:   epsg.Transform(4326, 3857),
		fromMercator: epsg.Transform(3857, 4326),
	}
	g.originX, g.originY, _ = g.toMercator(longitude, latitude, 0)
	return g, nil
}

// LonLat returns the longitude and latitude of a local position. The
// altitude is the local Y unchanged.
func (g *Georef) LonLat(local mgl64.Vec3) (lon, lat, alt float64) {
	x := g.originX + local.X()*g.scale
	y := g.originY + local.Z()*g.scale
	lon, lat, _ = g.fromMercator(x, y, 0)
	return lon, lat, local.Y()
}

// Local returns the local position of a longitude/latitude at altitude.
func (g *Georef) Local(lon, lat, alt float64) mgl64.Vec3 {
	x, y, _ := g.toMercator(lon, lat, 0)
	return mgl64.Vec3{(x - g.originX) / g.scale, alt, (y - g.originY) / g.scale}
}

// Point returns a local position as a 3D WGS84 point.
func (g *Georef) Point(local mgl64.Vec3) geom.Point {
	lon, lat, alt := g.LonLat(local)
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: lon, Y: lat},
		Z:    alt,
		Type: geom.DimXYZ,
	})
}

// LineString converts a ground track of local (east, north) coordinates
// into WGS84 longitude/latitude.
func (g *Georef) LineString(ground geom.LineString) geom.LineString {
	seq := ground.Coordinates()
	n := seq.Length()
	if n < 2 {
		return geom.LineString{}
	}
	flat := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		lon, lat, _ := g.LonLat(mgl64.Vec3{xy.X, 0, xy.Y})
		flat = append(flat, lon, lat)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}
