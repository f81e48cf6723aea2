// pkg/core/wind.go
package core

// WindLayer is the wind observed at one altitude band.
// DirectionDeg is where the wind comes from, 0 = north, clockwise.
type WindLayer struct {
	AltitudeMeters float64 `json:"altitudeMeters"`
	DirectionDeg   float64 `json:"directionDeg"`
	SpeedKnots     float64 `json:"speedKnots"`
}
