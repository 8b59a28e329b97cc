// Package notify forwards dependency completions to a socket.io endpoint so
// that an external dashboard can follow a page run.
package notify

import (
	"time"

	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/events"
)

// EventName is the socket.io event every completion is emitted as.
const EventName = "initr:done"

// Payload describes one completion.
type Payload struct {
	RunID    string    `json:"run_id"`
	Handle   string    `json:"handle"`
	Key      string    `json:"key"`
	Type     string    `json:"type,omitempty"`
	Elements int       `json:"elements"`
	At       time.Time `json:"at"`
}

// Emitter sends an event to the remote side.
type Emitter interface {
	Emit(event string, payload Payload) error
}

// Subscriber is the part of the coordinator the forwarder needs.
type Subscriber interface {
	On(name string, h events.Handler) error
}

// Forwarder emits a Payload for every completion it is attached to.
type Forwarder struct {
	emitter Emitter
	runID   string
	now     func() time.Time
}

// NewForwarder creates a forwarder tagging payloads with runID.
func NewForwarder(emitter Emitter, runID string) *Forwarder {
	return &Forwarder{emitter: emitter, runID: runID, now: time.Now}
}

// Attach subscribes the forwarder to the done event of every key.
// Completed keys are forwarded immediately.
func (f *Forwarder) Attach(s Subscriber, keys ...string) error {
	for _, key := range keys {
		if err := s.On(key, f.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle is an events.Handler emitting the completion of d.
func (f *Forwarder) Handle(els dom.Selection, d *dependency.Descriptor) error {
	return f.emitter.Emit(EventName, f.payload(els, d))
}

func (f *Forwarder) payload(els dom.Selection, d *dependency.Descriptor) Payload {
	p := Payload{RunID: f.runID, Elements: els.Len(), At: f.now().UTC()}
	if d != nil {
		p.Handle = d.Handle
		p.Key = d.Key()
		p.Type = d.Type
	}
	return p
}
