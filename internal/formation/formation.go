package formation

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jumprun/formationsim/pkg/core"
)

var (
	ErrNoPoints       = errors.New("formation has no usable points")
	ErrSlotOutOfRange = errors.New("formation slot out of range")
)

// TransitionSmoothing is the fraction of the remaining distance to the next
// point's offset covered per step during a point transition.
const TransitionSmoothing = 0.1

// Formation is an immutable choreography: an ordered list of points, each
// a set of slots. Jumpers refer to it by ID and slot index.
type Formation struct {
	ID       string
	Title    string
	Points   []core.FormationPoint
	geometry Geometry
}

// New validates data and builds a Formation.
func New(data core.FormationData, g Geometry) (*Formation, error) {
	if len(data.Points) == 0 || len(data.Points[0].Slots) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPoints, data.Title)
	}
	for pi, p := range data.Points {
		for si, s := range p.Slots {
			if !finite(s.Origin.X) || !finite(s.Origin.Y) || !finite(s.AngleDeg) {
				return nil, fmt.Errorf("formation %q point %d slot %d: non-finite slot values", data.Title, pi, si)
			}
		}
	}

	id := data.ID
	if id == "" {
		id = data.Title
	}
	return &Formation{
		ID:       id,
		Title:    data.Title,
		Points:   data.Points,
		geometry: g,
	}, nil
}

// Size is the number of slots in the first point.
func (f *Formation) Size() int {
	return len(f.Points[0].Slots)
}

// Slot returns the slot at index in point.
func (f *Formation) Slot(point, index int) (core.FormationSlot, error) {
	if point < 0 || point >= len(f.Points) {
		return core.FormationSlot{}, fmt.Errorf("%w: point %d of %d", ErrSlotOutOfRange, point, len(f.Points))
	}
	slots := f.Points[point].Slots
	if index < 0 || index >= len(slots) {
		return core.FormationSlot{}, fmt.Errorf("%w: slot %d of %d in point %d", ErrSlotOutOfRange, index, len(slots), point)
	}
	return slots[index], nil
}

// Offset returns the local offset of slot index in point.
func (f *Formation) Offset(point, index int) (mgl64.Vec3, error) {
	slot, err := f.Slot(point, index)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return f.geometry.SlotOffset(slot, f.Points[point].Slots), nil
}

// Offsets returns the local offsets of every slot in point.
func (f *Formation) Offsets(point int) []mgl64.Vec3 {
	if point < 0 || point >= len(f.Points) {
		return nil
	}
	slots := f.Points[point].Slots
	out := make([]mgl64.Vec3, len(slots))
	for i, s := range slots {
		out[i] = f.geometry.SlotOffset(s, slots)
	}
	return out
}

// Facing returns the yaw of slot index in point relative to the formation.
func (f *Formation) Facing(point, index int) (mgl64.Quat, error) {
	slot, err := f.Slot(point, index)
	if err != nil {
		return mgl64.QuatIdent(), err
	}
	return OrientationFromAngle(slot.AngleDeg), nil
}

// Timing places the formation's points on the simulation clock.
type Timing struct {
	Start    float64
	Interval float64
	Points   int
}

// Timing returns the schedule for a formation that starts building at start.
// Each point lasts max(5, 60/points) seconds.
func (f *Formation) Timing(start float64) Timing {
	n := len(f.Points)
	return Timing{
		Start:    start,
		Interval: math.Max(5, 60/float64(n)),
		Points:   n,
	}
}

// End is when the last point finishes.
func (t Timing) End() float64 {
	return t.Start + float64(t.Points)*t.Interval
}

// PointIndexAt returns the point active at time. Before the start it is the
// first point, after the end the last.
func (t Timing) PointIndexAt(time float64) int {
	if time <= t.Start || t.Points <= 1 {
		return 0
	}
	idx := int(math.Floor((time - t.Start) / t.Interval))
	if idx >= t.Points {
		idx = t.Points - 1
	}
	return idx
}

// Progress is the completed fraction of the sequence at time, in [0, 1].
func (t Timing) Progress(time float64) float64 {
	if time <= t.Start {
		return 0
	}
	end := t.End()
	if time >= end {
		return 1
	}
	return (time - t.Start) / (end - t.Start)
}

// Smoother follows one slot's offset through the point sequence, easing
// toward each new point's offset instead of jumping to it.
type Smoother struct {
	f       *Formation
	timing  Timing
	slot    int
	current mgl64.Vec3
	alpha   float64
}

// NewSmoother returns a Smoother for slot starting at the first point.
func (f *Formation) NewSmoother(slot int, timing Timing) (*Smoother, error) {
	start, err := f.Offset(0, slot)
	if err != nil {
		return nil, err
	}
	return &Smoother{
		f:       f,
		timing:  timing,
		slot:    slot,
		current: start,
		alpha:   TransitionSmoothing,
	}, nil
}

// Step advances to time and returns the smoothed local offset. Points with
// fewer slots than the smoother's index keep the previous target.
func (s *Smoother) Step(time float64) mgl64.Vec3 {
	target, err := s.f.Offset(s.timing.PointIndexAt(time), s.slot)
	if err != nil {
		return s.current
	}
	s.current = s.current.Add(target.Sub(s.current).Mul(s.alpha))
	return s.current
}

// Current returns the last smoothed offset.
func (s *Smoother) Current() mgl64.Vec3 {
	return s.current
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
