package v1

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumprun/formationsim/internal/geo"
	"github.com/jumprun/formationsim/pkg/core"
)

func testRun() *core.Run {
	return &core.Run{
		ID:         uuid.New(),
		Name:       "Test Load",
		StartTime:  time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC),
		Duration:   300,
		Step:       0.5,
		Dropzone:   core.Dropzone{Name: "Perris", Latitude: 33.7613, Longitude: -117.2131},
		WindLayers: []core.WindLayer{{AltitudeMeters: 1000, DirectionDeg: 270, SpeedKnots: 12}},
	}
}

func TestBuild(t *testing.T) {
	run := testRun()
	g, err := geo.ForDropzone(run.Dropzone)
	require.NoError(t, err)

	summary := &core.FlightSummary{
		ExitTime:        5,
		SeparationTime:  5.5,
		TrackingTime:    40,
		DeployTime:      60,
		LandingTime:     250,
		LandingPosition: mgl64.Vec3{0, 0, 0},
	}
	tracks := []core.EntityTrack{
		{
			EntityID:  uuid.New(),
			Kind:      core.KindAircraft,
			Name:      "aircraft",
			SlotIndex: -1,
			Samples: []core.Sample{
				{Time: 0, Position: mgl64.Vec3{1, 4000, 2}, Velocity: mgl64.Vec3{46, 0, 0}, Orientation: mgl64.QuatIdent()},
			},
		},
		{
			EntityID:    uuid.New(),
			Kind:        core.KindJumper,
			Name:        "jumper 1",
			FlyingStyle: core.StyleBelly,
			Summary:     summary,
		},
	}

	export := Build(run, tracks, g)
	assert.Equal(t, FormatVersion, export.Version)
	assert.Equal(t, "Test Load", export.Name)
	require.NotNil(t, export.Dropzone)
	assert.Equal(t, "Perris", export.Dropzone.Name)
	require.Len(t, export.Wind, 1)
	assert.Equal(t, 12.0, export.Wind[0].Speed)

	require.Len(t, export.Entities, 2)
	aircraft := export.Entities[0]
	assert.Nil(t, aircraft.Summary)
	assert.Equal(t, [11]float64{0, 1, 4000, 2, 46, 0, 0, 1, 0, 0, 0}, aircraft.Samples[0])

	jumper := export.Entities[1]
	require.NotNil(t, jumper.Summary)
	assert.Equal(t, 55.0, jumper.Summary.Freefall)
	require.Len(t, jumper.Landing, 2)
	assert.InDelta(t, -117.2131, jumper.Landing[0], 1e-9)
	assert.InDelta(t, 33.7613, jumper.Landing[1], 1e-9)
	assert.NotNil(t, jumper.Samples)
}

func TestBuild_NoDropzone(t *testing.T) {
	run := testRun()
	run.Dropzone = core.Dropzone{}

	export := Build(run, []core.EntityTrack{{
		Kind:    core.KindJumper,
		Summary: &core.FlightSummary{ExitTime: 0, DeployTime: 30, LandingTime: 200},
	}}, nil)
	assert.Nil(t, export.Dropzone)
	assert.Nil(t, export.Entities[0].Landing)
}
