// Package v1 is the first file format of exported runs.
package v1

import (
	"encoding/json"
	"time"
)

// FormatVersion is written into every export.
const FormatVersion = 1

// Export is the root structure of an exported run.
type Export struct {
	Version   int             `json:"version"`
	RunID     string          `json:"runId"`
	Name      string          `json:"name"`
	StartTime time.Time       `json:"startTime"`
	Duration  float64         `json:"duration"`
	Step      float64         `json:"step"`
	Dropzone  *Dropzone       `json:"dropzone,omitempty"`
	Physics   json.RawMessage `json:"physics,omitempty"`
	Wind      []WindLayer     `json:"wind"`
	Entities  []Entity        `json:"entities"`
}

// Dropzone is where the local frame is anchored.
type Dropzone struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WindLayer is one band of the wind field.
type WindLayer struct {
	Altitude  float64 `json:"altitude"`
	Direction float64 `json:"direction"`
	Speed     float64 `json:"speedKts"`
}

// Entity is the aircraft or a jumper.
// Each sample is [t, x, y, z, vx, vy, vz, qw, qx, qy, qz].
type Entity struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Name        string          `json:"name"`
	FlyingStyle string          `json:"flyingStyle,omitempty"`
	FormationID string          `json:"formationId,omitempty"`
	SlotIndex   int             `json:"slotIndex"`
	Params      json.RawMessage `json:"params,omitempty"`
	Summary     *Summary        `json:"summary,omitempty"`
	Landing     []float64       `json:"landing,omitempty"` // [lon, lat] when georeferenced
	Samples     [][11]float64   `json:"samples"`
}

// Summary holds the phase transition times of a jumper, -1 if never.
type Summary struct {
	Exit             float64 `json:"exit"`
	Separation       float64 `json:"separation"`
	Tracking         float64 `json:"tracking"`
	Deploy           float64 `json:"deploy"`
	Landing          float64 `json:"landing"`
	Freefall         float64 `json:"freefall"`
	MaxVerticalSpeed float64 `json:"maxVerticalSpeed"`
}
