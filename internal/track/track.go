// Package track stores the time-sampled motion of one entity and answers
// "where was it at time t" by interpolating between samples.
package track

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/jumprun/formationsim/pkg/core"
)

// Track is an ordered sequence of samples. Once published through a Handle
// it is never modified again.
type Track struct {
	samples []core.Sample
}

// New returns an empty track with room for capacity samples.
func New(capacity int) *Track {
	return &Track{samples: make([]core.Sample, 0, capacity)}
}

// AddSample appends a sample. Callers must add samples in non-decreasing
// time order; this is not checked.
func (t *Track) AddSample(time float64, position, velocity mgl64.Vec3, orientation mgl64.Quat) {
	t.samples = append(t.samples, core.Sample{
		Time:        time,
		Position:    position,
		Velocity:    velocity,
		Orientation: orientation,
	})
}

// Append adds a prepared sample.
func (t *Track) Append(s core.Sample) {
	t.samples = append(t.samples, s)
}

// Len returns the number of samples
func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.samples)
}

// Samples returns a copy of the samples.
func (t *Track) Samples() []core.Sample {
	if t == nil {
		return nil
	}
	out := make([]core.Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Sample returns the i-th sample.
func (t *Track) Sample(i int) core.Sample {
	return t.samples[i]
}

// Start returns the time of the first sample, or 0 for an empty track.
func (t *Track) Start() float64 {
	if t.Len() == 0 {
		return 0
	}
	return t.samples[0].Time
}

// End returns the time of the last sample, or 0 for an empty track.
func (t *Track) End() float64 {
	if t.Len() == 0 {
		return 0
	}
	return t.samples[len(t.samples)-1].Time
}

// Duration is End - Start
func (t *Track) Duration() float64 {
	return t.End() - t.Start()
}

// At returns the interpolated sample at time. Times outside the sampled span
// clamp to the first or last sample. The bool is false when the track holds
// no samples.
func (t *Track) At(time float64) (core.Sample, bool) {
	n := t.Len()
	if n == 0 {
		return core.Sample{}, false
	}

	first, last := t.samples[0], t.samples[n-1]
	if time <= first.Time {
		return first, true
	}
	if time >= last.Time {
		return last, true
	}

	// first index with Time >= time; 0 < i < n here
	i := sort.Search(n, func(i int) bool { return t.samples[i].Time >= time })
	b := t.samples[i]
	if b.Time == time {
		return b, true
	}
	a := t.samples[i-1]

	span := b.Time - a.Time
	if span <= 0 {
		return b, true
	}
	frac := (time - a.Time) / span

	return core.Sample{
		Time:        time,
		Position:    lerp(a.Position, b.Position, frac),
		Velocity:    lerp(a.Velocity, b.Velocity, frac),
		Orientation: mgl64.QuatSlerp(a.Orientation, b.Orientation, frac),
	}, true
}

func lerp(a, b mgl64.Vec3, frac float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(frac))
}

// GroundTrack projects the track onto the ground plane as a line string of
// (east, north) coordinates. Tracks with fewer than two samples yield an
// empty line string.
func (t *Track) GroundTrack() geom.LineString {
	if t.Len() < 2 {
		return geom.LineString{}
	}
	flat := make([]float64, 0, 2*len(t.samples))
	for _, s := range t.samples {
		flat = append(flat, s.Position.X(), s.Position.Z())
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}
