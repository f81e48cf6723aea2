// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"github.com/go-gl/mathgl/mgl64"
	"gorm.io/datatypes"

	"github.com/jumprun/formationsim/internal/geo"
	"github.com/jumprun/formationsim/internal/model"
	"github.com/jumprun/formationsim/internal/track"
	"github.com/jumprun/formationsim/pkg/core"
)

// rawJSON returns raw as a JSON column, "{}" when empty.
func rawJSON(raw []byte) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

// CoreToRun converts a core.Run to a GORM model.Run with its wind layers.
// The dropzone location is only set when the dropzone is georeferenced.
func CoreToRun(r core.Run, g *geo.Georef) model.Run {
	run := model.Run{
		RunUUID:      r.ID.String(),
		Name:         r.Name,
		StartTime:    r.StartTime,
		Duration:     r.Duration,
		Step:         r.Step,
		DropzoneName: r.Dropzone.Name,
		Physics:      rawJSON(r.Physics),
		WindLayers:   make([]model.WindLayer, 0, len(r.WindLayers)),
	}
	if g != nil {
		run.Location = g.Point(mgl64.Vec3{})
	}
	for _, l := range r.WindLayers {
		run.WindLayers = append(run.WindLayers, CoreToWindLayer(l))
	}
	return run
}

// CoreToWindLayer converts a core.WindLayer to a GORM model.WindLayer.
func CoreToWindLayer(l core.WindLayer) model.WindLayer {
	return model.WindLayer{
		AltitudeMeters: l.AltitudeMeters,
		DirectionDeg:   l.DirectionDeg,
		SpeedKnots:     l.SpeedKnots,
	}
}

// CoreToEntity converts an entity track to a GORM model.Entity without its
// samples. Jumpers without a summary, and the aircraft, get every
// transition time set to -1.
func CoreToEntity(t core.EntityTrack, g *geo.Georef) model.Entity {
	e := model.Entity{
		EntityUUID:  t.EntityID.String(),
		Kind:        string(t.Kind),
		Name:        t.Name,
		FlyingStyle: string(t.FlyingStyle),
		FormationID: t.FormationID,
		SlotIndex:   t.SlotIndex,
		Params:      rawJSON(t.Params),
		Summary:     CoreToSummary(t.Summary),
		SampleCount: len(t.Samples),
	}

	if g != nil {
		if t.Summary != nil && t.Summary.Landed() {
			e.LandingPoint = g.Point(t.Summary.LandingPosition)
		}
		tr := track.New(len(t.Samples))
		for _, s := range t.Samples {
			tr.Append(s)
		}
		if ls := g.LineString(tr.GroundTrack()); !ls.IsEmpty() {
			e.GroundTrack = ls.AsText()
		}
	}
	return e
}

// CoreToSummary converts a flight summary; nil becomes "never happened".
func CoreToSummary(s *core.FlightSummary) model.Summary {
	if s == nil {
		return model.Summary{ExitTime: -1, SeparationTime: -1, TrackingTime: -1, DeployTime: -1, LandingTime: -1}
	}
	return model.Summary{
		ExitTime:         s.ExitTime,
		SeparationTime:   s.SeparationTime,
		TrackingTime:     s.TrackingTime,
		DeployTime:       s.DeployTime,
		LandingTime:      s.LandingTime,
		MaxVerticalSpeed: s.MaxVerticalSpeed,
	}
}

// CoreToTrackSamples converts the samples of an entity stored under entityID.
func CoreToTrackSamples(entityID uint, samples []core.Sample) []model.TrackSample {
	out := make([]model.TrackSample, len(samples))
	for i, s := range samples {
		out[i] = model.TrackSample{
			EntityID: entityID,
			Time:     s.Time,
			X:        s.Position.X(),
			Y:        s.Position.Y(),
			Z:        s.Position.Z(),
			VX:       s.Velocity.X(),
			VY:       s.Velocity.Y(),
			VZ:       s.Velocity.Z(),
			QW:       s.Orientation.W,
			QX:       s.Orientation.X(),
			QY:       s.Orientation.Y(),
			QZ:       s.Orientation.Z(),
		}
	}
	return out
}

// TrackSampleToCore converts a stored sample back to a core.Sample.
func TrackSampleToCore(s model.TrackSample) core.Sample {
	return core.Sample{
		Time:     s.Time,
		Position: mgl64.Vec3{s.X, s.Y, s.Z},
		Velocity: mgl64.Vec3{s.VX, s.VY, s.VZ},
		Orientation: mgl64.Quat{
			W: s.QW,
			V: mgl64.Vec3{s.QX, s.QY, s.QZ},
		},
	}
}
