// Package attrs provides validators over element attributes and an
// application module that indexes the elements it is initialized with.
package attrs

import (
	"context"
	"sync"

	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/registry"
)

// Snapshot holds the attributes of an element the index cares about.
type Snapshot struct {
	Tag      string
	ID       string
	Class    string
	DataType string
}

// Module implements registry.Module. It is also registered as the "attrs"
// application module.
type Module struct {
	mu    sync.Mutex
	index map[string][]Snapshot
}

// Register registers the validators and the application module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterValidator("NonEmpty", NonEmpty)
	r.RegisterValidator("AllHaveID", AllHaveID)
	r.RegisterModule("attrs", m)
}

// NonEmpty passes when at least one element matched.
func NonEmpty(els dom.Selection, _ *dependency.Descriptor) bool {
	return els.Len() > 0
}

// AllHaveID passes when every matched element carries a non-empty id.
func AllHaveID(els dom.Selection, _ *dependency.Descriptor) bool {
	for _, e := range els {
		if id, ok := e.Attr("id"); !ok || id == "" {
			return false
		}
	}
	return true
}

// Init implements registry.Initializer by indexing els under d's key.
func (m *Module) Init(_ context.Context, els dom.Selection, d *dependency.Descriptor) error {
	snaps := make([]Snapshot, 0, els.Len())
	for _, e := range els {
		snaps = append(snaps, snapshot(e))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == nil {
		m.index = make(map[string][]Snapshot)
	}
	m.index[d.Key()] = snaps
	return nil
}

// Lookup returns the snapshots indexed under key.
func (m *Module) Lookup(key string) ([]Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps, ok := m.index[key]
	return snaps, ok
}

func snapshot(e dom.Element) Snapshot {
	s := Snapshot{Tag: e.Tag()}
	s.ID, _ = e.Attr("id")
	s.Class, _ = e.Attr("class")
	s.DataType, _ = e.Attr("data-type")
	return s
}
