// Package dependency defines the descriptor that drives one load-and-init
// unit of work.
package dependency

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/initr/internal/dom"
)

// ErrNoHandle is returned by Check for descriptors without a handle.
var ErrNoHandle = errors.New("dependency has no handle")

type (
	// Config is free-form initializer configuration.
	Config map[string]any

	// ValidateFunc gates a dependency after its selector matched. Returning
	// false skips the dependency.
	ValidateFunc func(els dom.Selection, d *Descriptor) bool

	// InitFunc is an ad-hoc initializer used when no strategy handles the
	// dependency type.
	InitFunc func(ctx context.Context, els dom.Selection, d *Descriptor) error

	// DoneFunc runs after a dependency completed, before its done event is
	// published.
	DoneFunc func(els dom.Selection, d *Descriptor)

	// VariantInitFunc runs after a variant's elements were initialized.
	VariantInitFunc func(els dom.Selection, d *Descriptor)
)

// Source is a script requirement: either a single identifier or an ordered
// list whose entries may carry the wait marker.
type Source struct {
	Single string
	List   []string
}

// One returns a single-script source.
func One(id string) Source {
	return Source{Single: id}
}

// List returns a multi-script source.
func List(ids ...string) Source {
	return Source{List: ids}
}

// IsZero reports whether no script is required.
func (s Source) IsZero() bool {
	return s.Single == "" && len(s.List) == 0
}

// Bundle replaces Src outside of dev mode. A Prebundled bundle means the
// scripts already ship with the page and nothing has to be fetched.
type Bundle struct {
	Path       string
	Prebundled bool
}

// Variant is configuration applied to the subset of matched elements that
// belong to Key.
type Variant struct {
	// Key is either a selector (BySelector) or the expected data-type
	// attribute value.
	Key        string
	BySelector bool
	Config     Config
	Init       VariantInitFunc
}

// Descriptor describes a dependency. It must not be modified after it has
// been handed to a coordinator.
type Descriptor struct {
	Handle   string
	Name     string
	Selector string
	Validate ValidateFunc

	Src    Source
	Bundle *Bundle

	Type            string
	Types           []Variant
	TypesBySelector bool
	Defaults        Config

	Init InitFunc
	Done DoneFunc

	// Next is run, skipping its load step, when the coordinator is asked to
	// re-run this dependency.
	Next *Descriptor
}

// Key returns the completion key: Name when set, Handle otherwise.
func (d *Descriptor) Key() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Handle
}

// HasScripts reports whether the dependency requires any loading. A bundle
// only stands in for Src; on its own it does not trigger a load.
func (d *Descriptor) HasScripts() bool {
	return !d.Src.IsZero()
}

// String identifies the descriptor in logs.
func (d *Descriptor) String() string {
	if d.Handle == "" {
		return fmt.Sprintf("dependency(selector=%q)", d.Selector)
	}
	return d.Handle
}

// Check reports structural problems with d and its chained dependencies.
func (d *Descriptor) Check() error {
	for cur := d; cur != nil; cur = cur.Next {
		if cur.Handle == "" {
			return fmt.Errorf("%s: %w", cur, ErrNoHandle)
		}
		for _, v := range cur.Types {
			if v.Key == "" {
				return fmt.Errorf("%s: variant without key", cur)
			}
		}
	}
	return nil
}
