package track

import (
	"sync/atomic"

	"github.com/jumprun/formationsim/pkg/core"
)

// Handle is the published track of an entity. Writers build a complete
// Track and swap it in with Replace, so readers never see a partial one.
type Handle struct {
	current atomic.Pointer[Track]
}

// Replace publishes t as the current track.
func (h *Handle) Replace(t *Track) {
	h.current.Store(t)
}

// Load returns the current track. It never returns nil; before the first
// Replace each call returns a new empty track.
func (h *Handle) Load() *Track {
	if t := h.current.Load(); t != nil {
		return t
	}
	return &Track{}
}

// At is shorthand for Load().At(time).
func (h *Handle) At(time float64) (core.Sample, bool) {
	return h.Load().At(time)
}
