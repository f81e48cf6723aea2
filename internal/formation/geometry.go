// Package formation turns formation diagrams into jumper offsets, facing
// orientations and tracking directions.
package formation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/jumprun/formationsim/pkg/core"
)

// DefaultDiagramScale converts formation diagram units to meters.
const DefaultDiagramScale = 0.065

var up = mgl64.Vec3{0, 1, 0}

// Geometry computes slot placement in the local formation frame: diagram +X
// maps to world +X and diagram +Y maps to world +Z, the forward direction
// of an aircraft with zero yaw.
type Geometry struct {
	Scale float64
}

// NewGeometry returns a Geometry with the given scale, falling back to
// DefaultDiagramScale for non-positive values.
func NewGeometry(scale float64) Geometry {
	if scale <= 0 || math.IsNaN(scale) {
		scale = DefaultDiagramScale
	}
	return Geometry{Scale: scale}
}

// Centroid returns the mean origin of slots.
func Centroid(slots []core.FormationSlot) core.Position2D {
	if len(slots) == 0 {
		return core.Position2D{}
	}
	points := make([]geom.Point, len(slots))
	for i, s := range slots {
		points[i] = geom.NewPoint(geom.Coordinates{
			XY:   geom.XY{X: s.Origin.X, Y: s.Origin.Y},
			Type: geom.DimXY,
		})
	}
	c, ok := geom.NewMultiPoint(points).Centroid().XY()
	if !ok {
		return core.Position2D{}
	}
	return core.Position2D{X: c.X, Y: c.Y}
}

// SlotOffset returns slot's offset from the centroid of slotsInPoint, in
// meters on the horizontal plane.
func (g Geometry) SlotOffset(slot core.FormationSlot, slotsInPoint []core.FormationSlot) mgl64.Vec3 {
	c := Centroid(slotsInPoint)
	return mgl64.Vec3{
		(slot.Origin.X - c.X) * g.Scale,
		0,
		(slot.Origin.Y - c.Y) * g.Scale,
	}
}

// OrientationFromAngle returns a rotation about the vertical axis.
func OrientationFromAngle(angleDeg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(angleDeg), up)
}

// HeadingYaw returns the yaw-only rotation that turns world +Z onto heading.
// A zero heading yields the identity.
func HeadingYaw(heading mgl64.Vec3) mgl64.Quat {
	if heading.X() == 0 && heading.Z() == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(math.Atan2(heading.X(), heading.Z()), up)
}

// ToWorld rotates a local formation offset so diagram forward follows heading.
func ToWorld(offset, heading mgl64.Vec3) mgl64.Vec3 {
	return HeadingYaw(heading).Rotate(offset)
}

// TrackingDirections returns one horizontal unit vector per member for the
// tracking phase. worldOffsets are the members' offsets from the formation
// centroid, already rotated into the world frame.
//
// One member (or none) tracks perpendicular to heading. Two members split
// to opposite sides of the perpendicular. Three or more fan out radially.
func TrackingDirections(heading mgl64.Vec3, worldOffsets []mgl64.Vec3) []mgl64.Vec3 {
	perp := Perpendicular(heading)
	n := len(worldOffsets)
	dirs := make([]mgl64.Vec3, n)

	switch {
	case n <= 1:
		for i := range dirs {
			dirs[i] = perp
		}
	case n == 2:
		for i, o := range worldOffsets {
			side := o.Dot(perp)
			sign := 1.0
			switch {
			case math.Abs(side) > 1e-9:
				if side < 0 {
					sign = -1
				}
			case i%2 == 1:
				sign = -1
			}
			dirs[i] = perp.Mul(sign)
		}
	default:
		yaw := HeadingYaw(heading)
		for i, o := range worldOffsets {
			flat := mgl64.Vec3{o.X(), 0, o.Z()}
			if flat.Len() > 1e-9 {
				dirs[i] = flat.Normalize()
				continue
			}
			a := 2 * math.Pi * float64(i) / float64(n)
			dirs[i] = yaw.Rotate(mgl64.Vec3{math.Sin(a), 0, math.Cos(a)})
		}
	}
	return dirs
}

// Perpendicular returns the horizontal unit vector to the right of heading.
// A zero heading yields world +X.
func Perpendicular(heading mgl64.Vec3) mgl64.Vec3 {
	p := up.Cross(mgl64.Vec3{heading.X(), 0, heading.Z()})
	if p.Len() < 1e-12 {
		return mgl64.Vec3{1, 0, 0}
	}
	return p.Normalize()
}
