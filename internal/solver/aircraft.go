package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/jumprun/formationsim/internal/kinematics"
	"github.com/jumprun/formationsim/internal/track"
)

// PrecalculateAircraft samples the aircraft's straight-line flight over
// [0, duration] every step seconds and publishes the track. The aircraft's
// live state is left as it was before the call.
func (s *Solver) PrecalculateAircraft(ctx context.Context, a *kinematics.Aircraft, duration, step float64) (err error) {
	if a == nil {
		return fmt.Errorf("aircraft: %w", ErrNilEntity)
	}
	start := time.Now()
	n, err := stepCount(duration, step)
	if err != nil {
		return err
	}
	defer func() {
		s.record(ctx, "aircraft", n+1, float64(time.Since(start).Microseconds())/1000, err)
	}()

	saved := a.Live()
	defer a.SetLive(saved)

	tr := track.New(n + 1)
	for i := 0; i <= n; i++ {
		t := float64(i) * step
		a.Update(t)
		live := a.Live()
		if !live.Finite() {
			return fmt.Errorf("aircraft at t=%.3f: %w", t, ErrNonFinite)
		}
		tr.AddSample(t, live.Position, live.Velocity, live.Orientation)
	}

	a.Track().Replace(tr)
	s.log.Debug("Aircraft track precalculated",
		"aircraft", a.ID.String(),
		"samples", tr.Len(),
		"duration", duration,
		"step", step,
	)
	return nil
}
