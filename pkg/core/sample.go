// pkg/core/sample.go
package core

import "github.com/go-gl/mathgl/mgl64"

// Sample is one entry of a track: where an entity is, how fast it moves and
// which way it faces at a simulation time.
// Axes: X east, Y up, Z north, all in meters.
type Sample struct {
	Time        float64 // seconds since run start
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3 // m/s
	Orientation mgl64.Quat
}

// FlightPhase is the stage of a jumper's flight at a given step.
type FlightPhase uint8

const (
	PhaseExit FlightPhase = iota
	PhaseFreeFall
	PhaseTracking
	PhaseCanopyDescent
	PhaseLanded
)

func (p FlightPhase) String() string {
	switch p {
	case PhaseExit:
		return "exit"
	case PhaseFreeFall:
		return "freefall"
	case PhaseTracking:
		return "tracking"
	case PhaseCanopyDescent:
		return "canopy"
	case PhaseLanded:
		return "landed"
	default:
		return "unknown"
	}
}
