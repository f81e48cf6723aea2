package solver

import (
	"fmt"
	"math"
)

// Constants carries every physical constant the solver uses. A Solver
// copies it on construction.
type Constants struct {
	Gravity               float64 `json:"gravity" mapstructure:"gravity"`                   // m/s²
	AirDensity            float64 `json:"airDensity" mapstructure:"airDensity"`             // kg/m³
	DragCoefficient       float64 `json:"dragCoefficient" mapstructure:"dragCoefficient"`   // freefall
	TrackingAltitude      float64 `json:"trackingAltitude" mapstructure:"trackingAltitude"` // m
	TrackingRatio         float64 `json:"trackingRatio" mapstructure:"trackingRatio"`       // horizontal / vertical speed
	DeployAltitude        float64 `json:"deployAltitude" mapstructure:"deployAltitude"`     // m
	CanopyDragCoefficient float64 `json:"canopyDragCoefficient" mapstructure:"canopyDragCoefficient"`
}

// DefaultConstants returns sea-level physics with tracking from 4500 ft and
// deployment at 3500 ft.
func DefaultConstants() Constants {
	return Constants{
		Gravity:               9.81,
		AirDensity:            1.225,
		DragCoefficient:       1.0,
		TrackingAltitude:      1371.6,
		TrackingRatio:         1.0,
		DeployAltitude:        1066.8,
		CanopyDragCoefficient: 2.5,
	}
}

// Validate rejects negative or non-finite constants.
func (c Constants) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"gravity", c.Gravity},
		{"airDensity", c.AirDensity},
		{"dragCoefficient", c.DragCoefficient},
		{"trackingAltitude", c.TrackingAltitude},
		{"trackingRatio", c.TrackingRatio},
		{"deployAltitude", c.DeployAltitude},
		{"canopyDragCoefficient", c.CanopyDragCoefficient},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("invalid physics constant %s: %v", f.name, f.value)
		}
	}
	return nil
}
