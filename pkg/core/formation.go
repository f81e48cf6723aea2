// pkg/core/formation.go
package core

// Position2D is a point on a formation diagram, in diagram units.
// +Y is the direction the formation flies.
type Position2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FormationSlot is one place in a formation point.
type FormationSlot struct {
	Origin   Position2D `json:"origin"`
	AngleDeg float64    `json:"angleDeg"`
	Stance   string     `json:"stance,omitempty"`
}

// FormationPoint is one choreography step.
type FormationPoint struct {
	Slots []FormationSlot `json:"slots"`
}

// FormationData is a parsed formation document.
type FormationData struct {
	ID     string           `json:"id"`
	Title  string           `json:"title"`
	Points []FormationPoint `json:"points"`
}
