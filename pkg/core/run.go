// pkg/core/run.go
package core

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ErrNoRun is returned by storage when a track arrives outside a run.
var ErrNoRun = errors.New("no run started")

// Dropzone anchors the local simulation frame on the globe.
type Dropzone struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Run describes one precalculation of a jump load
type Run struct {
	ID         uuid.UUID
	Name       string
	StartTime  time.Time
	Duration   float64
	Step       float64
	Dropzone   Dropzone
	WindLayers []WindLayer
	Physics    json.RawMessage // constants the run was solved with
}

// FlightSummary holds the phase transitions of one jumper.
// Times are negative when the transition never happened within the run.
type FlightSummary struct {
	ExitTime         float64
	SeparationTime   float64 // first time the jumper is clear of the aircraft
	TrackingTime     float64
	DeployTime       float64
	LandingTime      float64
	LandingPosition  mgl64.Vec3
	MaxVerticalSpeed float64
}

// FreefallTime is the time between exit and deployment, or landing when
// the jumper never deployed.
func (s FlightSummary) FreefallTime() float64 {
	if s.ExitTime < 0 {
		return 0
	}
	end := s.DeployTime
	if end < 0 {
		end = s.LandingTime
	}
	if end < 0 {
		return 0
	}
	return end - s.ExitTime
}

// Landed reports whether the jumper reached the ground
func (s FlightSummary) Landed() bool {
	return s.LandingTime >= 0
}

// EntityTrack is an entity's finished track ready to be stored.
type EntityTrack struct {
	EntityID    uuid.UUID
	Kind        EntityKind
	Name        string
	FlyingStyle FlyingStyle
	FormationID string
	SlotIndex   int
	Params      json.RawMessage
	Samples     []Sample
	Summary     *FlightSummary // nil for the aircraft
}
