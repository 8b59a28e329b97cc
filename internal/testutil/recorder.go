package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/registry"
)

// ErrRecorded is returned by the "fail" capabilities of RecordingModule.
var ErrRecorded = errors.New("recording module asked to fail")

// Call is one invocation seen by RecordingModule.
type Call struct {
	Kind     string // plugin, global, init, done
	Handle   string
	Elements int
	Config   dependency.Config
}

// RecordingModule registers element plugins, global functions and callbacks
// that remember every call in order. The plugin "fail" always fails.
type RecordingModule struct {
	Plugins []string
	Globals []string

	mu    sync.Mutex
	calls []Call
}

// Register implements registry.Module.
func (m *RecordingModule) Register(r *registry.Registry) {
	for _, name := range m.Plugins {
		r.RegisterPlugin(name, func(_ context.Context, els dom.Selection, cfg dependency.Config) error {
			m.add(Call{Kind: "plugin", Handle: name, Elements: els.Len(), Config: cfg})
			return nil
		})
	}
	for _, name := range m.Globals {
		r.RegisterGlobal(name, func(_ context.Context, cfg dependency.Config) error {
			m.add(Call{Kind: "global", Handle: name, Config: cfg})
			return nil
		})
	}
	r.RegisterPlugin("fail", func(context.Context, dom.Selection, dependency.Config) error {
		return ErrRecorded
	})
	r.RegisterInit("Record", func(_ context.Context, els dom.Selection, d *dependency.Descriptor) error {
		m.add(Call{Kind: "init", Handle: d.Handle, Elements: els.Len()})
		return nil
	})
	r.RegisterDone("RecordDone", func(els dom.Selection, d *dependency.Descriptor) {
		m.add(Call{Kind: "done", Handle: d.Handle, Elements: els.Len()})
	})
	r.RegisterValidator("Never", func(dom.Selection, *dependency.Descriptor) bool { return false })
}

func (m *RecordingModule) add(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Calls returns every call so far.
func (m *RecordingModule) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallsOf returns the calls of one kind.
func (m *RecordingModule) CallsOf(kind string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
