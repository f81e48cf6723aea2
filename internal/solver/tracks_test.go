package solver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumprun/formationsim/pkg/core"
)

func TestLoadTracks(t *testing.T) {
	s := newSolver(t, nil, nil)
	l := load(t, 2)
	res, err := s.Run(context.Background(), l, RunConfig{Duration: 10, AircraftStep: 0.5})
	require.NoError(t, err)

	tracks, err := l.Tracks(res)
	require.NoError(t, err)
	require.Len(t, tracks, 3)

	assert.Equal(t, core.KindAircraft, tracks[0].Kind)
	assert.Nil(t, tracks[0].Summary)
	assert.Len(t, tracks[0].Samples, 21)

	for i, tr := range tracks[1:] {
		assert.Equal(t, core.KindJumper, tr.Kind)
		assert.Equal(t, l.Jumpers[i].ID, tr.EntityID)
		require.NotNil(t, tr.Summary)
		assert.Equal(t, res.Summaries[i], *tr.Summary)
		assert.Len(t, tr.Samples, 21)

		var params map[string]any
		require.NoError(t, json.Unmarshal(tr.Params, &params))
		assert.Equal(t, tr.Name, params["name"])
	}
}

func TestLoadTracks_Mismatch(t *testing.T) {
	l := load(t, 2)
	_, err := l.Tracks(&Result{})
	assert.Error(t, err)
	_, err = Load{}.Tracks(&Result{})
	assert.ErrorIs(t, err, ErrNilEntity)
}
