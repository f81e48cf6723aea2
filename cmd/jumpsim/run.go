package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/jumprun/formationsim/internal/config"
	"github.com/jumprun/formationsim/internal/geo"
	"github.com/jumprun/formationsim/internal/influx"
	"github.com/jumprun/formationsim/internal/logging"
	"github.com/jumprun/formationsim/internal/solver"
	"github.com/jumprun/formationsim/internal/storage"
	"github.com/jumprun/formationsim/pkg/core"
)

// run precalculates the scenario at scenarioPath, stores the tracks and
// prints a summary table to out.
func run(ctx context.Context, scenarioPath string, out io.Writer, log *slog.Logger) error {
	sc, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}

	dropzone := core.Dropzone(config.GetDropzone())
	if sc.Dropzone != nil {
		dropzone = *sc.Dropzone
	}
	georef, err := geo.ForDropzone(dropzone)
	if err != nil {
		return fmt.Errorf("dropzone %q: %w", dropzone.Name, err)
	}

	layers, err := sc.windLayers()
	if err != nil {
		return err
	}
	field, err := windField(layers)
	if err != nil {
		return err
	}
	table, err := sc.formations(viper.GetFloat64("formation.diagramScale"))
	if err != nil {
		return err
	}
	load, err := sc.load(georef)
	if err != nil {
		return err
	}

	constants := solver.Constants(config.GetPhysicsConfig())
	s, err := solver.New(solver.Dependencies{
		Constants:  constants,
		Wind:       field,
		Formations: table,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	rc := config.GetRunConfig()
	log.Info("Precalculating scenario",
		"scenario", sc.Name,
		"jumpers", len(load.Jumpers),
		"formations", len(table.IDs()),
		"windLayers", len(layers),
	)
	res, err := s.Run(ctx, load, solver.RunConfig(rc))
	if err != nil {
		return err
	}

	tracks, err := load.Tracks(res)
	if err != nil {
		return err
	}
	physics, err := json.Marshal(constants)
	if err != nil {
		return err
	}
	coreRun := &core.Run{
		ID:         res.RunID,
		Name:       sc.Name,
		StartTime:  time.Now(),
		Duration:   rc.Duration,
		Step:       rc.AircraftStep,
		Dropzone:   dropzone,
		WindLayers: layers,
		Physics:    physics,
	}

	ctx = logging.WithRun(ctx, coreRun.ID.String())
	if err := store(ctx, coreRun, tracks, log); err != nil {
		return err
	}
	if viper.GetBool("influx.enabled") {
		if err := writeInflux(ctx, coreRun, tracks, res.Elapsed, log); err != nil {
			log.WarnContext(ctx, "Failed to write run metrics", "error", err)
		}
	}

	return printSummaries(out, coreRun, tracks)
}

// store hands every track to the configured storage backend.
func store(ctx context.Context, run *core.Run, tracks []core.EntityTrack, log *slog.Logger) error {
	cfg := config.GetStorageConfig()
	backend, err := storage.NewBackend(cfg, logging.NewComponentLogger(componentLog, viper.GetString("logLevel"), "storage"))
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.Type, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close storage", "error", err)
		}
	}()

	if err := backend.StartRun(run); err != nil {
		return err
	}
	for i := range tracks {
		if err := backend.SaveTrack(&tracks[i]); err != nil {
			return err
		}
	}
	if err := backend.EndRun(); err != nil {
		return err
	}

	if e, ok := backend.(storage.Exporter); ok {
		log.InfoContext(ctx, "Run stored", "storage", cfg.Type, "path", e.ExportedFilePath())
	} else {
		log.InfoContext(ctx, "Run stored", "storage", cfg.Type)
	}
	return nil
}

// writeInflux sends the run summary points to InfluxDB or its backup file.
func writeInflux(ctx context.Context, run *core.Run, tracks []core.EntityTrack, elapsed time.Duration, log *slog.Logger) error {
	m := influx.NewManager(config.GetInfluxConfig(),
		logging.NewComponentLogger(componentLog, viper.GetString("logLevel"), "influx"),
		influxBackupPath())
	if err := m.Connect(ctx); err != nil {
		return err
	}
	werr := m.WriteRun(run, tracks, elapsed)
	if err := m.Close(); err != nil {
		log.WarnContext(ctx, "Failed to close influx", "error", err)
	}
	return werr
}

// printSummaries writes one row per jumper. Transitions that never
// happened print as "-".
func printSummaries(out io.Writer, run *core.Run, tracks []core.EntityTrack) error {
	fmt.Fprintf(out, "run %s (%s)\n", run.ID, run.Name)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JUMPER\tSTYLE\tFORMATION\tEXIT\tSEPARATION\tTRACKING\tDEPLOY\tLANDING\tFREEFALL\tMAX VS")
	for _, t := range tracks {
		if t.Summary == nil {
			continue
		}
		s := t.Summary
		formation := "-"
		if t.FormationID != "" {
			formation = fmt.Sprintf("%s/%d", t.FormationID, t.SlotIndex)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.1f\t%.1f\n",
			t.Name, t.FlyingStyle, formation,
			seconds(s.ExitTime), seconds(s.SeparationTime), seconds(s.TrackingTime),
			seconds(s.DeployTime), seconds(s.LandingTime),
			s.FreefallTime(), s.MaxVerticalSpeed,
		)
	}
	return w.Flush()
}

func seconds(t float64) string {
	if t < 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", t)
}
