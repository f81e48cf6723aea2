package geo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/goccy/go-json"
)

// ParseJumprun reads a jump run line given as a JSON array of two
// [longitude, latitude] pairs and returns its ends in the local frame at
// ground level.
// Input format: "[[lon1,lat1],[lon2,lat2]]"
func (g *Georef) ParseJumprun(input string) (from, to mgl64.Vec3, err error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return from, to, fmt.Errorf("failed to parse jump run JSON: %w", err)
	}
	if len(coords) != 2 {
		return from, to, fmt.Errorf("jump run must have exactly 2 points, got %d", len(coords))
	}
	for i, c := range coords {
		if len(c) < 2 {
			return from, to, fmt.Errorf("jump run point %d has insufficient values", i)
		}
	}
	from = g.Local(coords[0][0], coords[0][1], 0)
	to = g.Local(coords[1][0], coords[1][1], 0)
	if from.Sub(to).Len() < 1 {
		return from, to, fmt.Errorf("jump run ends are the same point: %w", ErrInvalidCoordinates)
	}
	return from, to, nil
}
