package kinematics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/jumprun/formationsim/internal/track"
)

// Aircraft flies a straight line at constant speed for the whole run.
type Aircraft struct {
	ID              uuid.UUID
	Name            string
	InitialPosition mgl64.Vec3
	SpeedKnots      float64

	heading mgl64.Vec3
	live    State
	track   track.Handle
}

// NewAircraft places an aircraft at position flying along heading.
// Only the horizontal part of heading is used.
func NewAircraft(position, heading mgl64.Vec3, speedKnots float64) (*Aircraft, error) {
	if !finiteVec(position) {
		return nil, fmt.Errorf("aircraft position %v is not finite", position)
	}
	if !finite(speedKnots) || speedKnots < 0 {
		return nil, fmt.Errorf("%w: %v kt", ErrInvalidSpeed, speedKnots)
	}
	a := &Aircraft{
		ID:              uuid.New(),
		Name:            "aircraft",
		InitialPosition: position,
		SpeedKnots:      speedKnots,
	}
	if err := a.ChangeHeading(heading); err != nil {
		return nil, err
	}
	a.live.Position = position
	return a, nil
}

// Heading is the unit horizontal direction of flight.
func (a *Aircraft) Heading() mgl64.Vec3 {
	return a.heading
}

// Velocity is heading scaled by ground speed in m/s.
func (a *Aircraft) Velocity() mgl64.Vec3 {
	return a.heading.Mul(a.SpeedKnots * KnotsToMetersPerSecond)
}

// Yaw is the rotation about +Y that turns +Z onto the heading.
func (a *Aircraft) Yaw() mgl64.Quat {
	return mgl64.QuatRotate(math.Atan2(a.heading.X(), a.heading.Z()), mgl64.Vec3{0, 1, 0})
}

// PositionAt is where the aircraft is t seconds into the run.
func (a *Aircraft) PositionAt(t float64) mgl64.Vec3 {
	return a.InitialPosition.Add(a.Velocity().Mul(t))
}

// Update moves the live state to simulation time t.
func (a *Aircraft) Update(t float64) {
	a.live = State{
		Position:    a.PositionAt(t),
		Velocity:    a.Velocity(),
		Orientation: a.Yaw(),
	}
}

// ChangeHeading turns the aircraft. The live orientation follows.
func (a *Aircraft) ChangeHeading(heading mgl64.Vec3) error {
	flat := mgl64.Vec3{heading.X(), 0, heading.Z()}
	if !finiteVec(flat) || flat.Len() < 1e-9 {
		return fmt.Errorf("%w: %v", ErrInvalidHeading, heading)
	}
	a.heading = flat.Normalize()
	a.live.Velocity = a.Velocity()
	a.live.Orientation = a.Yaw()
	return nil
}

// AlignToJumprun starts the aircraft over from and points it at to,
// keeping its current altitude.
func (a *Aircraft) AlignToJumprun(from, to mgl64.Vec3) error {
	if err := a.ChangeHeading(to.Sub(from)); err != nil {
		return err
	}
	a.InitialPosition = mgl64.Vec3{from.X(), a.InitialPosition.Y(), from.Z()}
	a.live.Position = a.InitialPosition
	return nil
}

// Live returns the live state.
func (a *Aircraft) Live() State {
	return a.live
}

// SetLive overwrites the live state.
func (a *Aircraft) SetLive(s State) {
	a.live = s
}

// Track is the aircraft's published track.
func (a *Aircraft) Track() *track.Handle {
	return &a.track
}
