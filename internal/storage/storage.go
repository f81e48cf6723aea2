// Package storage defines where precalculated runs are kept.
package storage

import "github.com/jumprun/formationsim/pkg/core"

// ErrNoRun is returned when a track is saved outside StartRun/EndRun.
var ErrNoRun = core.ErrNoRun

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management
	StartRun(run *core.Run) error
	EndRun() error

	// SaveTrack stores one finished entity track of the current run.
	SaveTrack(t *core.EntityTrack) error
}

// Exporter is an optional interface for storage backends that write each
// run to a file.
type Exporter interface {
	ExportedFilePath() string
}
