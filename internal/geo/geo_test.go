package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumprun/formationsim/pkg/core"
)

// Skydive Perris
const (
	dzLat = 33.7613
	dzLon = -117.2131
)

func newPerris(t *testing.T) *Georef {
	t.Helper()
	g, err := NewGeoref(dzLat, dzLon)
	require.NoError(t, err)
	return g
}

func TestNewGeoref_Invalid(t *testing.T) {
	for _, c := range [][2]float64{{89, 0}, {0, 181}, {math.NaN(), 0}} {
		_, err := NewGeoref(c[0], c[1])
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("NewGeoref(%v, %v): expected ErrInvalidCoordinates, got %v", c[0], c[1], err)
		}
	}
}

func TestGeoref_OriginIsDropzone(t *testing.T) {
	g := newPerris(t)
	lon, lat, alt := g.LonLat(mgl64.Vec3{0, 1200, 0})

	assert.InDelta(t, dzLon, lon, 1e-9)
	assert.InDelta(t, dzLat, lat, 1e-9)
	assert.Equal(t, 1200.0, alt)
}

func TestGeoref_AxesPointEastAndNorth(t *testing.T) {
	g := newPerris(t)

	lon, lat, _ := g.LonLat(mgl64.Vec3{1000, 0, 0})
	if lon <= dzLon {
		t.Errorf("+X should be east: lon %f <= %f", lon, dzLon)
	}
	assert.InDelta(t, dzLat, lat, 1e-6)

	lon, lat, _ = g.LonLat(mgl64.Vec3{0, 0, 1000})
	if lat <= dzLat {
		t.Errorf("+Z should be north: lat %f <= %f", lat, dzLat)
	}
	assert.InDelta(t, dzLon, lon, 1e-9)

	// one kilometre north is about 0.009 degrees of latitude
	assert.InDelta(t, 1000.0/111_000, lat-dzLat, 2e-4)
}

func TestGeoref_RoundTrip(t *testing.T) {
	g := newPerris(t)
	for _, p := range []mgl64.Vec3{{0, 0, 0}, {1500, 10, -800}, {-3200, 4000, 2500}} {
		lon, lat, alt := g.LonLat(p)
		back := g.Local(lon, lat, alt)
		vecNear(t, p, back, 1e-3, "round trip of %v gave %v", p, back)
	}
}

func TestGeoref_Point(t *testing.T) {
	g := newPerris(t)
	pt := g.Point(mgl64.Vec3{0, 300, 0})

	c, ok := pt.Coordinates()
	require.True(t, ok)
	assert.Equal(t, geom.DimXYZ, c.Type)
	assert.InDelta(t, dzLon, c.X, 1e-9)
	assert.InDelta(t, dzLat, c.Y, 1e-9)
	assert.Equal(t, 300.0, c.Z)
}

func TestGeoref_LineString(t *testing.T) {
	g := newPerris(t)
	ground := geom.NewLineString(geom.NewSequence([]float64{0, 0, 1000, 0, 1000, 1000}, geom.DimXY))

	ls := g.LineString(ground)
	seq := ls.Coordinates()
	require.Equal(t, 3, seq.Length())
	assert.InDelta(t, dzLon, seq.GetXY(0).X, 1e-9)
	assert.Greater(t, seq.GetXY(1).X, dzLon)
	assert.Greater(t, seq.GetXY(2).Y, dzLat)

	assert.True(t, g.LineString(geom.LineString{}).IsEmpty())
}

func TestParseJumprun(t *testing.T) {
	g := newPerris(t)

	from, to, err := g.ParseJumprun("[[-117.2131,33.7613],[-117.2131,33.7703]]")
	require.NoError(t, err)
	vecNear(t, mgl64.Vec3{}, from, 1e-3)
	assert.InDelta(t, 0, to.X(), 1e-3)
	assert.Greater(t, to.Z(), 900.0)

	_, _, err = g.ParseJumprun("not json")
	assert.Error(t, err)
	_, _, err = g.ParseJumprun("[[1,2]]")
	assert.Error(t, err)
	_, _, err = g.ParseJumprun("[[1],[2,3]]")
	assert.Error(t, err)
	_, _, err = g.ParseJumprun("[[-117.2131,33.7613],[-117.2131,33.7613]]")
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestForDropzone(t *testing.T) {
	g, err := ForDropzone(core.Dropzone{Name: "nowhere"})
	require.NoError(t, err)
	assert.Nil(t, g)

	g, err = ForDropzone(core.Dropzone{Name: "Perris", Latitude: 33.7613, Longitude: -117.2131})
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, 33.7613, g.Latitude)

	_, err = ForDropzone(core.Dropzone{Latitude: 89})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

// vecNear compares vectors by the length of their difference. mgl64's
// ApproxEqualThreshold turns relative when one component is exactly zero.
func vecNear(t *testing.T, want, got mgl64.Vec3, tol float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, 0, got.Sub(want).Len(), tol, msgAndArgs...)
}
