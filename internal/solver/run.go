package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jumprun/formationsim/internal/kinematics"
	"github.com/jumprun/formationsim/pkg/core"
)

// Load is an aircraft with the jumpers it carries.
type Load struct {
	Aircraft *kinematics.Aircraft
	Jumpers  []*kinematics.Jumper
}

// RunConfig sets the time grid of a run.
type RunConfig struct {
	Duration     float64 // seconds
	AircraftStep float64
	JumperStep   float64 // 0 uses AircraftStep
	Parallelism  int     // concurrent jumper precalculations, at least 1
}

// Result is the outcome of a run.
type Result struct {
	RunID     uuid.UUID
	Summaries []core.FlightSummary // in load.Jumpers order
	Elapsed   time.Duration
}

// Run precalculates the aircraft and then every jumper of load. Jumpers
// share only the read-only aircraft track and wind field, so up to
// cfg.Parallelism of them are solved at once. ctx is checked between
// entities, never inside one.
func (s *Solver) Run(ctx context.Context, load Load, cfg RunConfig) (*Result, error) {
	if load.Aircraft == nil {
		return nil, fmt.Errorf("load aircraft: %w", ErrNilEntity)
	}
	jumperStep := cfg.JumperStep
	if jumperStep == 0 {
		jumperStep = cfg.AircraftStep
	}
	parallelism := cfg.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	start := time.Now()
	res := &Result{
		RunID:     uuid.New(),
		Summaries: make([]core.FlightSummary, len(load.Jumpers)),
	}
	log := s.log.With("run", res.RunID.String())

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.PrecalculateAircraft(ctx, load.Aircraft, cfg.Duration, cfg.AircraftStep); err != nil {
		return nil, fmt.Errorf("aircraft: %w", err)
	}

	starts := formationStarts(load.Jumpers)
	members := formationMembers(load.Jumpers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, j := range load.Jumpers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if j == nil {
				return fmt.Errorf("jumper %d: %w", i, ErrNilEntity)
			}
			formationStart := j.Params.ExitTime
			var slots []int
			if j.InFormation() {
				formationStart = starts[j.Params.FormationID]
				slots = members[j.Params.FormationID]
			}
			summary, err := s.precalculateJumper(gctx, j, load.Aircraft, cfg.Duration, jumperStep, formationStart, slots)
			if err != nil {
				return err
			}
			res.Summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("Run failed", "error", err)
		return nil, err
	}

	res.Elapsed = time.Since(start)
	log.Info("Run precalculated",
		"jumpers", len(load.Jumpers),
		"duration", cfg.Duration,
		"elapsed", res.Elapsed.String(),
	)
	return res, nil
}

// formationStarts maps each formation to the earliest exit among its members.
func formationStarts(jumpers []*kinematics.Jumper) map[string]float64 {
	starts := make(map[string]float64)
	for _, j := range jumpers {
		if j == nil || !j.InFormation() {
			continue
		}
		id := j.Params.FormationID
		if cur, ok := starts[id]; !ok || j.Params.ExitTime < cur {
			starts[id] = j.Params.ExitTime
		}
	}
	return starts
}

// formationMembers maps each formation to the slots its jumpers fly.
func formationMembers(jumpers []*kinematics.Jumper) map[string][]int {
	members := make(map[string][]int)
	for _, j := range jumpers {
		if j == nil || !j.InFormation() {
			continue
		}
		id := j.Params.FormationID
		members[id] = append(members[id], j.Params.SlotIndex)
	}
	return members
}
