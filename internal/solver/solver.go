// Package solver precalculates the tracks of an aircraft and its jumpers
// with a fixed-step integrator.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jumprun/formationsim/internal/formation"
	"github.com/jumprun/formationsim/internal/wind"
)

// MaxSamples bounds the size of a single track.
const MaxSamples = 10_000_000

var (
	ErrInvalidStep      = errors.New("step must be finite and positive")
	ErrInvalidDuration  = errors.New("duration must be finite and non-negative")
	ErrNoAircraftSample = errors.New("no aircraft sample at exit time")
	ErrNonFinite        = errors.New("integration produced a non-finite state")
	ErrUnknownFormation = errors.New("jumper references an unknown formation")
	ErrNilEntity        = errors.New("entity is nil")
)

// Dependencies are the collaborators of a Solver.
type Dependencies struct {
	Constants  Constants
	Wind       *wind.Field      // nil means calm air
	Formations *formation.Table // may be nil when no jumper flies in a formation
	Logger     *slog.Logger
}

// Solver integrates entity motion. It holds no per-run state, so one
// Solver may serve concurrent precalculations.
type Solver struct {
	constants  Constants
	wind       *wind.Field
	formations *formation.Table
	log        *slog.Logger

	precalculations metric.Int64Counter
	samples         metric.Int64Counter
	failures        metric.Int64Counter
	duration        metric.Float64Histogram
}

// New validates deps and returns a Solver.
// Metrics go to the global OTel meter provider, a no-op unless configured.
func New(deps Dependencies) (*Solver, error) {
	if err := deps.Constants.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		constants:  deps.Constants,
		wind:       deps.Wind,
		formations: deps.Formations,
		log:        deps.Logger,
	}
	if s.wind == nil {
		s.wind = wind.Calm()
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	m := meter()
	var err error

	s.precalculations, err = m.Int64Counter(
		"solver.precalculations",
		metric.WithDescription("Tracks precalculated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating precalculation counter: %w", err)
	}

	s.samples, err = m.Int64Counter(
		"solver.samples",
		metric.WithDescription("Samples written to tracks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sample counter: %w", err)
	}

	s.failures, err = m.Int64Counter(
		"solver.failures",
		metric.WithDescription("Precalculations that returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failure counter: %w", err)
	}

	s.duration, err = m.Float64Histogram(
		"solver.precalculate.duration",
		metric.WithDescription("Wall time of one precalculation"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return s, nil
}

// Constants returns the physics constants in use.
func (s *Solver) Constants() Constants {
	return s.constants
}

// Wind returns the wind field in use.
func (s *Solver) Wind() *wind.Field {
	return s.wind
}

// stepCount returns the index of the last sample for a run of duration
// sampled every step: samples sit at i*step for i in [0, n].
func stepCount(duration, step float64) (int, error) {
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidStep, step)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}
	n := math.Floor(duration/step + 1e-9)
	if n+1 > MaxSamples {
		return 0, fmt.Errorf("%w: %.0f samples exceeds the limit of %d", ErrInvalidStep, n+1, MaxSamples)
	}
	return int(n), nil
}

func (s *Solver) record(ctx context.Context, kind string, samples int, ms float64, err error) {
	attrs := metric.WithAttributes(attribute.String("entity", kind))
	if err != nil {
		s.failures.Add(ctx, 1, attrs)
		return
	}
	s.precalculations.Add(ctx, 1, attrs)
	s.samples.Add(ctx, int64(samples), attrs)
	s.duration.Record(ctx, ms, attrs)
}
