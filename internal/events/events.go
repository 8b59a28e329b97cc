// Package events implements the completion event bus.
//
// Event names have the form "<handle>:<event>". A name without an event part
// is normalized to "<handle>:done". Subscribing to an event of a handle that
// has already completed replays the stored completion to the new subscriber
// immediately.
package events

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
)

// DefaultEvent is appended to names that carry no event part.
const DefaultEvent = "done"

// Handler receives an event. A non-nil error stops delivery to the remaining
// subscribers and is returned to whoever published or subscribed.
type Handler func(els dom.Selection, d *dependency.Descriptor) error

// SubscriberError reports a subscriber that failed while an event was
// delivered or replayed.
type SubscriberError struct {
	Event  string
	Replay bool
	Err    error
}

func (e *SubscriberError) Error() string {
	if e.Replay {
		return fmt.Sprintf("replay %s: %v", e.Event, e.Err)
	}
	return fmt.Sprintf("event %s: %v", e.Event, e.Err)
}

func (e *SubscriberError) Unwrap() error {
	return e.Err
}

// History gives access to completed dependencies for replay.
type History interface {
	Last(handle string) (dom.Selection, *dependency.Descriptor, bool)
}

// NormalizeName trims name and appends ":done" when no event is given.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	parts := strings.Split(name, ":")
	if len(parts) == 1 || parts[1] == "" {
		return parts[0] + ":" + DefaultEvent
	}
	return name
}

// handleOf returns the handle part of a normalized name.
func handleOf(name string) string {
	handle, _, _ := strings.Cut(name, ":")
	return handle
}

// Bus maps event names to ordered subscriber lists. Lists are created on
// first subscription and never removed.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]Handler
	history History
}

// NewBus creates a bus that replays completions found in history. history may
// be nil.
func NewBus(history History) *Bus {
	return &Bus{
		subs:    make(map[string][]Handler),
		history: history,
	}
}

// Subscribe registers h for name. Empty names and nil handlers are ignored.
// If the handle part of name has already completed, h is called right away
// with the stored result and its error is returned.
func (b *Bus) Subscribe(name string, h Handler) error {
	if strings.TrimSpace(name) == "" || h == nil {
		return nil
	}
	name = NormalizeName(name)

	b.mu.Lock()
	b.subs[name] = append(b.subs[name], h)
	var (
		els       dom.Selection
		d         *dependency.Descriptor
		completed bool
	)
	if b.history != nil {
		els, d, completed = b.history.Last(handleOf(name))
	}
	b.mu.Unlock()

	if !completed {
		return nil
	}
	if err := h(els, d); err != nil {
		return &SubscriberError{Event: name, Replay: true, Err: err}
	}
	return nil
}

// Publish calls every subscriber of name in subscription order. Names nobody
// subscribed to are ignored. name is used verbatim.
func (b *Bus) Publish(name string, els dom.Selection, d *dependency.Descriptor) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subs[name]...)
	b.mu.RUnlock()
	return deliver(name, handlers, els, d)
}

// Announce runs store under the bus lock, then before, then publishes name.
// A Subscribe racing with Announce is either among the published subscribers
// or replays the stored result, never both.
func (b *Bus) Announce(name string, els dom.Selection, d *dependency.Descriptor, store, before func()) error {
	b.mu.Lock()
	store()
	handlers := append([]Handler(nil), b.subs[name]...)
	b.mu.Unlock()

	if before != nil {
		before()
	}
	return deliver(name, handlers, els, d)
}

func deliver(name string, handlers []Handler, els dom.Selection, d *dependency.Descriptor) error {
	for _, h := range handlers {
		if err := h(els, d); err != nil {
			return &SubscriberError{Event: name, Err: err}
		}
	}
	return nil
}

// Subscribers returns the number of handlers registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[NormalizeName(name)])
}
