package formation

import (
	"fmt"
	"sort"
	"sync"
)

// Table indexes formations by ID. Jumpers hold an ID and a slot index
// rather than a pointer into it.
type Table struct {
	mu    sync.RWMutex
	items map[string]*Formation
}

// NewTable returns a table holding formations.
func NewTable(formations ...*Formation) *Table {
	t := &Table{items: make(map[string]*Formation, len(formations))}
	for _, f := range formations {
		t.items[f.ID] = f
	}
	return t
}

// Add registers f, replacing any formation with the same ID.
func (t *Table) Add(f *Formation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[f.ID] = f
}

// Get looks up a formation.
func (t *Table) Get(id string) (*Formation, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.items[id]
	return f, ok
}

// MustGet is Get returning an error for unknown IDs.
func (t *Table) MustGet(id string) (*Formation, error) {
	f, ok := t.Get(id)
	if !ok {
		return nil, fmt.Errorf("formation %q not found", id)
	}
	return f, nil
}

// IDs returns the registered IDs in sorted order.
func (t *Table) IDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.items))
	for id := range t.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
