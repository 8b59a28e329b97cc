// Package completion records which dependencies finished initializing and
// announces each completion as a "<key>:done" event.
package completion

import (
	"sort"
	"sync"

	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
)

// Record is the outcome stored for a completed dependency.
type Record struct {
	Elements   dom.Selection
	Descriptor *dependency.Descriptor
}

// Publisher delivers completion events. store must run atomically with
// respect to subscriptions, before is called ahead of the subscribers.
type Publisher interface {
	Announce(name string, els dom.Selection, d *dependency.Descriptor, store, before func()) error
}

// Store keeps the latest record per completion key. Re-recording a key
// overwrites it.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	pub     Publisher
}

// NewStore creates an empty store. Completions are announced on pub once it
// is attached with SetPublisher.
func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

// SetPublisher attaches the event publisher.
func (s *Store) SetPublisher(pub Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pub = pub
}

// Record stores els under d's key, runs d's done callback and publishes
// "<key>:done". An error returned by a subscriber is passed back unchanged.
func (s *Store) Record(d *dependency.Descriptor, els dom.Selection) error {
	key := d.Key()
	store := func() {
		s.mu.Lock()
		s.records[key] = Record{Elements: els, Descriptor: d}
		s.mu.Unlock()
	}
	done := func() {
		if d.Done != nil {
			d.Done(els, d)
		}
	}

	s.mu.RLock()
	pub := s.pub
	s.mu.RUnlock()

	if pub == nil {
		store()
		done()
		return nil
	}
	return pub.Announce(key+":done", els, d, store, done)
}

// Get returns the record stored under key.
func (s *Store) Get(key string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok
}

// Last implements events.History.
func (s *Store) Last(key string) (dom.Selection, *dependency.Descriptor, bool) {
	rec, ok := s.Get(key)
	return rec.Elements, rec.Descriptor, ok
}

// Keys returns every recorded key, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
