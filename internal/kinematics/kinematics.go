// Package kinematics holds the entities of a jump load: the aircraft and
// its jumpers, their constants and live state, and their published tracks.
package kinematics

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// KnotsToMetersPerSecond is the aircraft speed conversion.
const KnotsToMetersPerSecond = 0.51444

// SquareFeetToSquareMeters converts canopy sizes.
const SquareFeetToSquareMeters = 0.092903

var (
	ErrInvalidHeading     = errors.New("heading must have a horizontal component")
	ErrInvalidSpeed       = errors.New("speed must be finite and non-negative")
	ErrInvalidExitTime    = errors.New("exit time must be finite and non-negative")
	ErrInvalidMass        = errors.New("jumper mass must be positive")
	ErrInvalidCanopy      = errors.New("canopy size must be positive")
	ErrUnknownFlyingStyle = errors.New("unknown flying style")
)

// State is the shared constant-velocity state of an entity.
type State struct {
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3
	Orientation mgl64.Quat
}

// Advance moves the state along its velocity for dt seconds.
func (s State) Advance(dt float64) State {
	s.Position = s.Position.Add(s.Velocity.Mul(dt))
	return s
}

// Finite reports whether every component is a real number.
func (s State) Finite() bool {
	return finiteVec(s.Position) && finiteVec(s.Velocity) &&
		finite(s.Orientation.W) && finiteVec(s.Orientation.V)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
