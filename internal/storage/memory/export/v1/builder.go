package v1

import (
	"github.com/jumprun/formationsim/internal/geo"
	"github.com/jumprun/formationsim/pkg/core"
)

// Build creates an Export from a run and its tracks. g may be nil.
func Build(run *core.Run, tracks []core.EntityTrack, g *geo.Georef) Export {
	export := Export{
		Version:   FormatVersion,
		RunID:     run.ID.String(),
		Name:      run.Name,
		StartTime: run.StartTime,
		Duration:  run.Duration,
		Step:      run.Step,
		Physics:   run.Physics,
		Wind:      make([]WindLayer, 0, len(run.WindLayers)),
		Entities:  make([]Entity, 0, len(tracks)),
	}
	if g != nil {
		export.Dropzone = &Dropzone{
			Name:      run.Dropzone.Name,
			Latitude:  run.Dropzone.Latitude,
			Longitude: run.Dropzone.Longitude,
		}
	}

	for _, l := range run.WindLayers {
		export.Wind = append(export.Wind, WindLayer{
			Altitude:  l.AltitudeMeters,
			Direction: l.DirectionDeg,
			Speed:     l.SpeedKnots,
		})
	}

	for _, t := range tracks {
		export.Entities = append(export.Entities, buildEntity(t, g))
	}
	return export
}

func buildEntity(t core.EntityTrack, g *geo.Georef) Entity {
	e := Entity{
		ID:          t.EntityID.String(),
		Kind:        string(t.Kind),
		Name:        t.Name,
		FlyingStyle: string(t.FlyingStyle),
		FormationID: t.FormationID,
		SlotIndex:   t.SlotIndex,
		Params:      t.Params,
		Samples:     make([][11]float64, len(t.Samples)),
	}
	for i, s := range t.Samples {
		e.Samples[i] = [11]float64{
			s.Time,
			s.Position.X(), s.Position.Y(), s.Position.Z(),
			s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
			s.Orientation.W, s.Orientation.X(), s.Orientation.Y(), s.Orientation.Z(),
		}
	}

	if t.Summary == nil {
		return e
	}
	e.Summary = &Summary{
		Exit:             t.Summary.ExitTime,
		Separation:       t.Summary.SeparationTime,
		Tracking:         t.Summary.TrackingTime,
		Deploy:           t.Summary.DeployTime,
		Landing:          t.Summary.LandingTime,
		Freefall:         t.Summary.FreefallTime(),
		MaxVerticalSpeed: t.Summary.MaxVerticalSpeed,
	}
	if g != nil && t.Summary.Landed() {
		lon, lat, _ := g.LonLat(t.Summary.LandingPosition)
		e.Landing = []float64{lon, lat}
	}
	return e
}
