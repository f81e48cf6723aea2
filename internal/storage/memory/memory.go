// Package memory keeps a run's tracks in memory and writes them to one
// file when the run ends.
package memory

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jumprun/formationsim/internal/config"
	"github.com/jumprun/formationsim/internal/geo"
	"github.com/jumprun/formationsim/pkg/core"
)

// Backend stores run data in memory and exports it on EndRun
type Backend struct {
	cfg    config.MemoryConfig
	log    zerolog.Logger
	run    *core.Run
	georef *geo.Georef
	tracks []core.EntityTrack

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig, log zerolog.Logger) (*Backend, error) {
	switch cfg.Format {
	case "":
		cfg.Format = FormatJSON
	case FormatJSON, FormatMsgpack:
	default:
		return nil, fmt.Errorf("unknown export format: %s", cfg.Format)
	}
	return &Backend{cfg: cfg, log: log}, nil
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRun begins collecting a new run, dropping anything not yet exported.
func (b *Backend) StartRun(run *core.Run) error {
	if run == nil {
		return fmt.Errorf("run is nil")
	}
	g, err := geo.ForDropzone(run.Dropzone)
	if err != nil {
		return fmt.Errorf("dropzone %q: %w", run.Dropzone.Name, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.run = run
	b.georef = g
	b.tracks = nil
	return nil
}

// SaveTrack adds a finished track to the current run.
func (b *Backend) SaveTrack(t *core.EntityTrack) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return core.ErrNoRun
	}
	b.tracks = append(b.tracks, *t)
	return nil
}

// EndRun exports the run and forgets it.
func (b *Backend) EndRun() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return core.ErrNoRun
	}
	err := b.export()
	b.run = nil
	b.tracks = nil
	return err
}

// Tracks returns the tracks collected for the current run.
func (b *Backend) Tracks() []core.EntityTrack {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.EntityTrack, len(b.tracks))
	copy(out, b.tracks)
	return out
}

// ExportedFilePath returns the file written by the last EndRun.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
