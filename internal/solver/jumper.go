package solver

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jumprun/formationsim/internal/formation"
	"github.com/jumprun/formationsim/internal/kinematics"
	"github.com/jumprun/formationsim/internal/track"
	"github.com/jumprun/formationsim/pkg/core"
)

// SeparationDistance is how far a jumper must be from the aircraft to count
// as clear of it.
const SeparationDistance = 2.0

// flight is the integrator state of one jumper during a precalculation.
type flight struct {
	phase core.FlightPhase
	state kinematics.State
	time  float64 // time of state

	exitTime    float64
	deployDelay float64
	mass        float64
	area        float64
	canopyArea  float64

	yaw      mgl64.Quat
	offset   mgl64.Vec3 // current world offset from the formation centroid
	facing   mgl64.Quat
	trackDir mgl64.Vec3
	smoother *formation.Smoother

	summary core.FlightSummary
}

// PrecalculateJumper integrates j's flight over [0, duration] every step
// seconds and publishes the track. The aircraft track must already be
// precalculated. On error the jumper's previous track is kept.
//
// Formation transitions, when the formation has several points, start at
// the jumper's own exit time and tracking directions count every slot of
// the formation. Run aligns transitions to the first member's exit and
// counts only the slots its jumpers fly.
func (s *Solver) PrecalculateJumper(ctx context.Context, j *kinematics.Jumper, a *kinematics.Aircraft, duration, step float64) (core.FlightSummary, error) {
	if j == nil {
		return core.FlightSummary{}, fmt.Errorf("jumper: %w", ErrNilEntity)
	}
	return s.precalculateJumper(ctx, j, a, duration, step, j.Params.ExitTime, nil)
}

// precalculateJumper is PrecalculateJumper with the formation transitions
// starting at formationStart. members lists the formation slots flown in
// the load and decides the tracking direction; nil means every slot.
func (s *Solver) precalculateJumper(ctx context.Context, j *kinematics.Jumper, a *kinematics.Aircraft, duration, step, formationStart float64, members []int) (summary core.FlightSummary, err error) {
	if j == nil || a == nil {
		return summary, fmt.Errorf("jumper precalculation: %w", ErrNilEntity)
	}
	start := time.Now()
	n, err := stepCount(duration, step)
	if err != nil {
		return summary, err
	}
	defer func() {
		s.record(ctx, "jumper", n+1, float64(time.Since(start).Microseconds())/1000, err)
	}()

	aircraftTrack := a.Track().Load()
	if aircraftTrack.Len() == 0 {
		return summary, fmt.Errorf("jumper %d: aircraft track is empty: %w", j.Index, ErrNoAircraftSample)
	}

	f, err := s.newFlight(j, a, formationStart, members)
	if err != nil {
		return summary, fmt.Errorf("jumper %d: %w", j.Index, err)
	}

	tr := track.New(n + 1)
	for i := 0; i <= n; i++ {
		t := float64(i) * step

		if f.phase == core.PhaseExit {
			if t < f.exitTime {
				sample, _ := aircraftTrack.At(t)
				sample.Time = t
				f.state = kinematics.State{Position: sample.Position, Velocity: sample.Velocity, Orientation: sample.Orientation}
				tr.Append(sample)
				continue
			}
			if err := f.leave(aircraftTrack); err != nil {
				return summary, fmt.Errorf("jumper %d: %w", j.Index, err)
			}
			if t > f.exitTime {
				s.advance(f, t)
			}
		} else {
			s.advance(f, t)
		}

		if !f.state.Finite() {
			return summary, fmt.Errorf("jumper %d at t=%.3f in %s: %w", j.Index, t, f.phase, ErrNonFinite)
		}
		if f.summary.SeparationTime < 0 && Separated(aircraftTrack, f.state.Position, t) {
			f.summary.SeparationTime = t
		}
		tr.AddSample(t, f.state.Position, f.state.Velocity, f.state.Orientation)
	}

	j.Track().Replace(tr)
	j.SetLive(f.state)

	s.log.Debug("Jumper track precalculated",
		"jumper", j.ID.String(),
		"index", j.Index,
		"phase", f.phase.String(),
		"exit", f.summary.ExitTime,
		"deploy", f.summary.DeployTime,
		"landing", f.summary.LandingTime,
	)
	return f.summary, nil
}

// newFlight resolves the jumper's exit offset, facing and tracking
// direction before integration starts.
func (s *Solver) newFlight(j *kinematics.Jumper, a *kinematics.Aircraft, formationStart float64, members []int) (*flight, error) {
	heading := a.Heading()
	yaw := a.Yaw()
	f := &flight{
		phase:       core.PhaseExit,
		exitTime:    j.Params.ExitTime,
		deployDelay: j.Params.DeployDelay,
		mass:        j.Mass(),
		area:        j.SurfaceArea,
		canopyArea:  j.CanopyArea(),
		yaw:         yaw,
		facing:      yaw,
		trackDir:    formation.Perpendicular(heading),
		summary: core.FlightSummary{
			ExitTime:       -1,
			SeparationTime: -1,
			TrackingTime:   -1,
			DeployTime:     -1,
			LandingTime:    -1,
		},
	}
	if !j.InFormation() {
		return f, nil
	}

	form, ok := s.formations.Get(j.Params.FormationID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormation, j.Params.FormationID)
	}
	slot := j.Params.SlotIndex
	local, err := form.Offset(0, slot)
	if err != nil {
		return nil, err
	}
	facing, err := form.Facing(0, slot)
	if err != nil {
		return nil, err
	}

	f.offset = yaw.Rotate(local)
	f.facing = yaw.Mul(facing).Normalize()

	locals := form.Offsets(0)
	flown := memberSlots(members, slot, len(locals))
	world := make([]mgl64.Vec3, len(flown))
	own := 0
	for i, m := range flown {
		world[i] = yaw.Rotate(locals[m])
		if m == slot {
			own = i
		}
	}
	f.trackDir = formation.TrackingDirections(heading, world)[own]

	if len(form.Points) > 1 {
		f.smoother, err = form.NewSmoother(slot, form.Timing(formationStart))
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// memberSlots returns the sorted slots in [0, size) that are flown,
// always including slot. nil members means all of them.
func memberSlots(members []int, slot, size int) []int {
	if members == nil {
		all := make([]int, size)
		for i := range all {
			all[i] = i
		}
		return all
	}
	seen := make(map[int]bool, len(members)+1)
	flown := make([]int, 0, len(members)+1)
	for _, m := range append([]int{slot}, members...) {
		if m < 0 || m >= size || seen[m] {
			continue
		}
		seen[m] = true
		flown = append(flown, m)
	}
	sort.Ints(flown)
	return flown
}

// leave moves the jumper from the aircraft into freefall at the exit time.
func (f *flight) leave(aircraftTrack *track.Track) error {
	if f.exitTime < aircraftTrack.Start() || f.exitTime > aircraftTrack.End()+1e-9 {
		return fmt.Errorf("%w: exit at %.3fs, aircraft track covers [%.3f, %.3f]",
			ErrNoAircraftSample, f.exitTime, aircraftTrack.Start(), aircraftTrack.End())
	}
	sample, _ := aircraftTrack.At(f.exitTime)

	f.state = kinematics.State{
		Position:    sample.Position.Add(f.offset),
		Velocity:    sample.Velocity,
		Orientation: f.facing,
	}
	f.time = f.exitTime
	f.phase = core.PhaseFreeFall
	f.summary.ExitTime = f.exitTime
	return nil
}

// transition applies the single exit rule of the current phase.
func (s *Solver) transition(f *flight) {
	y := f.state.Position.Y()
	deploy := y <= s.constants.DeployAltitude ||
		(f.deployDelay > 0 && f.time-f.exitTime >= f.deployDelay)

	switch f.phase {
	case core.PhaseFreeFall:
		if deploy {
			f.enter(core.PhaseCanopyDescent)
		} else if y <= s.constants.TrackingAltitude {
			f.enter(core.PhaseTracking)
		}
	case core.PhaseTracking:
		if deploy {
			f.enter(core.PhaseCanopyDescent)
		}
	}
}

func (f *flight) enter(p core.FlightPhase) {
	f.phase = p
	switch p {
	case core.PhaseTracking:
		f.summary.TrackingTime = f.time
	case core.PhaseCanopyDescent:
		f.summary.DeployTime = f.time
	case core.PhaseLanded:
		f.summary.LandingTime = f.time
		f.summary.LandingPosition = f.state.Position
	}
}

// advance integrates f from its current time to `to` with one
// semi-implicit Euler step.
func (s *Solver) advance(f *flight, to float64) {
	dt := to - f.time
	if f.phase == core.PhaseLanded || dt <= 0 {
		f.time = to
		return
	}
	s.transition(f)

	c := s.constants
	cd, area := c.DragCoefficient, f.area
	if f.phase == core.PhaseCanopyDescent {
		cd, area = c.CanopyDragCoefficient, f.canopyArea
	}

	v := f.state.Velocity
	w := s.wind.VectorAt(f.state.Position.Y())
	rel := v.Sub(w)

	force := mgl64.Vec3{0, -f.mass * c.Gravity, 0}
	if speed := rel.Len(); speed > 0 {
		drag := 0.5 * c.AirDensity * cd * area * speed * speed
		// one step of drag may stop the air-relative motion, never reverse it
		if limit := speed * f.mass / dt; drag > limit {
			drag = limit
		}
		force = force.Sub(rel.Mul(drag / speed))
	}
	v = v.Add(force.Mul(dt / f.mass))

	if f.phase == core.PhaseTracking {
		h := f.trackDir.Mul(math.Abs(v.Y()) * c.TrackingRatio).Add(w)
		v = mgl64.Vec3{h.X(), v.Y(), h.Z()}
	}

	f.state.Velocity = v
	f.state.Position = f.state.Position.Add(v.Mul(dt))
	f.time = to

	if f.phase == core.PhaseFreeFall && f.smoother != nil {
		next := f.yaw.Rotate(f.smoother.Step(to))
		f.state.Position = f.state.Position.Add(next.Sub(f.offset))
		f.offset = next
	}

	if vy := math.Abs(v.Y()); vy > f.summary.MaxVerticalSpeed {
		f.summary.MaxVerticalSpeed = vy
	}

	if f.state.Position.Y() < 0 {
		f.state.Position[1] = 0
		f.state.Velocity = mgl64.Vec3{}
		f.enter(core.PhaseLanded)
	}
}

// Separated reports whether position is farther than SeparationDistance
// from the aircraft's position at time t.
func Separated(aircraftTrack *track.Track, position mgl64.Vec3, t float64) bool {
	sample, ok := aircraftTrack.At(t)
	if !ok {
		return false
	}
	return sample.Position.Sub(position).Len() > SeparationDistance
}
