// Package wind models a static, altitude-banded wind profile.
package wind

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jumprun/formationsim/pkg/core"
)

// KnotsToMetersPerSecond converts knots to m/s.
const KnotsToMetersPerSecond = 0.514444

var (
	ErrNoLayers     = errors.New("wind field needs at least one layer")
	ErrInvalidLayer = errors.New("invalid wind layer")
)

type layer struct {
	altitude float64
	east     float64 // m/s
	north    float64 // m/s
}

// Field answers wind vectors by altitude. It is immutable after NewField
// and safe for concurrent use.
type Field struct {
	layers []layer
}

// NewField builds a field from layers in any order. Layers are sorted by
// altitude; of two layers at the same altitude the later one wins.
func NewField(layers []core.WindLayer) (*Field, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}

	sorted := make([]core.WindLayer, len(layers))
	copy(sorted, layers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AltitudeMeters < sorted[j].AltitudeMeters
	})

	f := &Field{layers: make([]layer, 0, len(sorted))}
	for i, l := range sorted {
		if !finite(l.AltitudeMeters) || !finite(l.DirectionDeg) || !finite(l.SpeedKnots) {
			return nil, fmt.Errorf("%w: layer %d has non-finite values", ErrInvalidLayer, i)
		}
		if l.SpeedKnots < 0 {
			return nil, fmt.Errorf("%w: negative speed %.2f kt at %.0f m", ErrInvalidLayer, l.SpeedKnots, l.AltitudeMeters)
		}

		speed := l.SpeedKnots * KnotsToMetersPerSecond
		theta := mgl64.DegToRad(l.DirectionDeg)
		next := layer{
			altitude: l.AltitudeMeters,
			east:     speed * math.Sin(theta),
			north:    speed * math.Cos(theta),
		}

		if n := len(f.layers); n > 0 && f.layers[n-1].altitude == next.altitude {
			f.layers[n-1] = next
			continue
		}
		f.layers = append(f.layers, next)
	}

	return f, nil
}

// Calm returns a field with no wind at any altitude.
func Calm() *Field {
	return &Field{layers: []layer{{}}}
}

// VectorAt returns the horizontal wind at altitude as (east, 0, north).
// Altitudes outside the profile take the nearest layer's wind.
func (f *Field) VectorAt(altitude float64) mgl64.Vec3 {
	n := len(f.layers)
	lo, hi := f.layers[0], f.layers[n-1]
	if altitude <= lo.altitude {
		return lo.vec()
	}
	if altitude >= hi.altitude {
		return hi.vec()
	}

	i := sort.Search(n, func(i int) bool { return f.layers[i].altitude >= altitude })
	b := f.layers[i]
	if b.altitude == altitude {
		return b.vec()
	}
	a := f.layers[i-1]
	frac := (altitude - a.altitude) / (b.altitude - a.altitude)

	return mgl64.Vec3{
		a.east + (b.east-a.east)*frac,
		0,
		a.north + (b.north-a.north)*frac,
	}
}

// Layers returns the number of distinct altitude bands.
func (f *Field) Layers() int {
	return len(f.layers)
}

func (l layer) vec() mgl64.Vec3 {
	return mgl64.Vec3{l.east, 0, l.north}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
