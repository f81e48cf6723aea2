package formation

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/jumprun/formationsim/pkg/core"
)

// jumpDocument mirrors the subset of a .jump formation file that placement
// needs. Everything else in the file is ignored.
type jumpDocument struct {
	Title  string `json:"title"`
	Points []struct {
		Inter bool `json:"inter"`
		Slots []struct {
			Stance   string     `json:"stance"`
			AngleDeg float64    `json:"angleDeg"`
			Origin   [2]float64 `json:"origin"`
		} `json:"slots"`
	} `json:"points"`
}

// Parse reads a .jump document.
func Parse(r io.Reader) (core.FormationData, error) {
	var doc jumpDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return core.FormationData{}, fmt.Errorf("failed to parse formation document: %w", err)
	}

	data := core.FormationData{
		ID:     doc.Title,
		Title:  doc.Title,
		Points: make([]core.FormationPoint, 0, len(doc.Points)),
	}
	for _, p := range doc.Points {
		point := core.FormationPoint{Slots: make([]core.FormationSlot, 0, len(p.Slots))}
		for _, s := range p.Slots {
			point.Slots = append(point.Slots, core.FormationSlot{
				Origin:   core.Position2D{X: s.Origin[0], Y: s.Origin[1]},
				AngleDeg: s.AngleDeg,
				Stance:   s.Stance,
			})
		}
		data.Points = append(data.Points, point)
	}

	if len(data.Points) == 0 || len(data.Points[0].Slots) == 0 {
		return data, fmt.Errorf("%w: %q", ErrNoPoints, doc.Title)
	}
	return data, nil
}
