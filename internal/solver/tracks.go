package solver

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/jumprun/formationsim/pkg/core"
)

// Tracks collects the published tracks of load after a Run, aircraft
// first, ready to be handed to a storage backend.
func (l Load) Tracks(res *Result) ([]core.EntityTrack, error) {
	if l.Aircraft == nil {
		return nil, fmt.Errorf("load aircraft: %w", ErrNilEntity)
	}
	if res == nil || len(res.Summaries) != len(l.Jumpers) {
		return nil, fmt.Errorf("result does not match load of %d jumpers", len(l.Jumpers))
	}

	tracks := make([]core.EntityTrack, 0, len(l.Jumpers)+1)
	tracks = append(tracks, core.EntityTrack{
		EntityID:  l.Aircraft.ID,
		Kind:      core.KindAircraft,
		Name:      l.Aircraft.Name,
		SlotIndex: -1,
		Samples:   l.Aircraft.Track().Load().Samples(),
	})

	for i, j := range l.Jumpers {
		params, err := json.Marshal(j.Params)
		if err != nil {
			return nil, fmt.Errorf("jumper %d params: %w", j.Index, err)
		}
		summary := res.Summaries[i]
		tracks = append(tracks, core.EntityTrack{
			EntityID:    j.ID,
			Kind:        core.KindJumper,
			Name:        j.Params.Name,
			FlyingStyle: j.Params.FlyingStyle,
			FormationID: j.Params.FormationID,
			SlotIndex:   j.Params.SlotIndex,
			Params:      params,
			Samples:     j.Track().Load().Samples(),
			Summary:     &summary,
		})
	}
	return tracks, nil
}
