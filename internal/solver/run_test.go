package solver

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumprun/formationsim/internal/formation"
	"github.com/jumprun/formationsim/internal/kinematics"
	"github.com/jumprun/formationsim/internal/wind"
	"github.com/jumprun/formationsim/pkg/core"
)

func load(t *testing.T, n int) Load {
	t.Helper()
	jumpers, err := kinematics.DefaultJumpers(n, 2)
	require.NoError(t, err)
	return Load{Aircraft: newAircraft(t, 4000), Jumpers: jumpers}
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	w, err := wind.NewField([]core.WindLayer{
		{AltitudeMeters: 0, DirectionDeg: 90, SpeedKnots: 10},
		{AltitudeMeters: 3000, DirectionDeg: 180, SpeedKnots: 30},
	})
	require.NoError(t, err)
	s := newSolver(t, w, nil)
	cfg := RunConfig{Duration: 120, AircraftStep: 0.1}

	seqLoad := load(t, 6)
	cfg.Parallelism = 1
	seq, err := s.Run(context.Background(), seqLoad, cfg)
	require.NoError(t, err)

	parLoad := load(t, 6)
	cfg.Parallelism = 4
	par, err := s.Run(context.Background(), parLoad, cfg)
	require.NoError(t, err)

	assert.Equal(t, seq.Summaries, par.Summaries)
	assert.NotEqual(t, seq.RunID, par.RunID)
	for i := range seqLoad.Jumpers {
		assert.Equal(t,
			seqLoad.Jumpers[i].Track().Load().Samples(),
			parLoad.Jumpers[i].Track().Load().Samples(),
			"jumper %d", i)
	}

	// summaries follow load order
	for i, sm := range seq.Summaries {
		assert.InDelta(t, float64(i)*2, sm.ExitTime, 1e-9)
	}
}

func TestRun_JumperStepDefaultsToAircraftStep(t *testing.T) {
	s := newSolver(t, nil, nil)
	l := load(t, 1)
	_, err := s.Run(context.Background(), l, RunConfig{Duration: 10, AircraftStep: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 21, l.Jumpers[0].Track().Load().Len())

	_, err = s.Run(context.Background(), l, RunConfig{Duration: 10, AircraftStep: 0.5, JumperStep: 0.1})
	require.NoError(t, err)
	assert.Equal(t, 101, l.Jumpers[0].Track().Load().Len())
}

func TestRun_Errors(t *testing.T) {
	s := newSolver(t, nil, nil)

	_, err := s.Run(context.Background(), Load{}, RunConfig{Duration: 10, AircraftStep: 0.1})
	assert.ErrorIs(t, err, ErrNilEntity)

	_, err = s.Run(context.Background(), load(t, 1), RunConfig{Duration: 10})
	assert.ErrorIs(t, err, ErrInvalidStep)

	l := load(t, 2)
	l.Jumpers[1] = nil
	_, err = s.Run(context.Background(), l, RunConfig{Duration: 10, AircraftStep: 0.1})
	assert.ErrorIs(t, err, ErrNilEntity)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx, load(t, 1), RunConfig{Duration: 10, AircraftStep: 0.1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormationStarts(t *testing.T) {
	mk := func(exit float64, id string) *kinematics.Jumper {
		j, err := kinematics.NewJumper(0, kinematics.JumperParams{ExitTime: exit, FormationID: id})
		require.NoError(t, err)
		return j
	}
	starts := formationStarts([]*kinematics.Jumper{
		mk(12, "a"), mk(10, "a"), mk(3, ""), mk(20, "b"), nil,
	})
	assert.Equal(t, map[string]float64{"a": 10, "b": 20}, starts)
}

func TestMemberSlots(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3}, memberSlots(nil, 2, 4))
	assert.Equal(t, []int{1, 3}, memberSlots([]int{3, 1, 3, 7, -1}, 1, 4))
	assert.Equal(t, []int{0, 2}, memberSlots([]int{2}, 0, 4))
}

func TestRun_PartlyFlownFormationTracksAsPair(t *testing.T) {
	data := core.FormationData{
		ID: "box",
		Points: []core.FormationPoint{{Slots: []core.FormationSlot{
			{Origin: core.Position2D{X: -20, Y: 20}},
			{Origin: core.Position2D{X: 20, Y: 20}},
			{Origin: core.Position2D{X: 20, Y: -20}},
			{Origin: core.Position2D{X: -20, Y: -20}},
		}}},
	}
	f, err := formation.New(data, formation.NewGeometry(formation.DefaultDiagramScale))
	require.NoError(t, err)

	s := newSolver(t, wind.Calm(), formation.NewTable(f))
	a := newAircraft(t, 4000)
	left := newJumper(t, 0, kinematics.JumperParams{ExitTime: 10, FormationID: "box", SlotIndex: 0})
	right := newJumper(t, 1, kinematics.JumperParams{ExitTime: 10, FormationID: "box", SlotIndex: 1})
	_, err = s.Run(context.Background(), Load{Aircraft: a, Jumpers: []*kinematics.Jumper{left, right}},
		RunConfig{Duration: 200, AircraftStep: 0.1})
	require.NoError(t, err)

	// two jumpers split to opposite sides of the heading, not diagonally
	perp := formation.Perpendicular(a.Heading())
	for j, want := range map[*kinematics.Jumper]float64{left: -1, right: 1} {
		jt := j.Track().Load()
		found := false
		for i := 0; i < jt.Len(); i++ {
			sm := jt.Sample(i)
			if sm.Position.Y() < 1300 && sm.Position.Y() > 1100 {
				h := mgl64.Vec3{sm.Velocity.X(), 0, sm.Velocity.Z()}.Normalize()
				assert.InDelta(t, want, h.Dot(perp), 1e-9, "slot %d", j.Params.SlotIndex)
				found = true
				break
			}
		}
		assert.True(t, found, "slot %d never tracked", j.Params.SlotIndex)
	}
}

func TestFormationMembers(t *testing.T) {
	mk := func(id string, slot int) *kinematics.Jumper {
		j, err := kinematics.NewJumper(0, kinematics.JumperParams{FormationID: id, SlotIndex: slot})
		require.NoError(t, err)
		return j
	}
	members := formationMembers([]*kinematics.Jumper{mk("a", 2), mk("a", 0), mk("", 1), nil, mk("b", 1)})
	assert.Equal(t, map[string][]int{"a": {2, 0}, "b": {1}}, members)
}

func TestConstantsValidate(t *testing.T) {
	assert.NoError(t, DefaultConstants().Validate())

	c := DefaultConstants()
	c.DeployAltitude = -5
	assert.Error(t, c.Validate())
}
