// Package strategy holds the initializer strategies a dependency's type tag
// dispatches to.
//
// Every strategy checks that the capability named by the dependency handle
// exists, applies the dependency configuration, and on success records the
// completion exactly once.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/registry"
)

// Built-in type tags.
const (
	ElementPluginType  = "element-plugin"
	GlobalFunctionType = "global-function"
	AppModuleType      = "app-module"
)

// ErrCapabilityMissing is returned when the capability named by a handle is
// not registered.
var ErrCapabilityMissing = errors.New("capability does not exist")

// Recorder stores a completion and announces it.
type Recorder interface {
	Record(d *dependency.Descriptor, els dom.Selection) error
}

// Toolkit exposes the capabilities strategies dispatch to.
// *registry.Registry implements it.
type Toolkit interface {
	Plugin(name string) (registry.ElementPlugin, bool)
	Global(name string) (registry.GlobalFunc, bool)
	Module(name string) (any, bool)
}

// Strategy initializes a dependency against its matched elements.
type Strategy interface {
	Run(ctx context.Context, rec Recorder, d *dependency.Descriptor, els dom.Selection) error
}

// Table maps type tags to strategies.
type Table map[string]Strategy

// Builtins returns the built-in strategies bound to tk. The short tags "$.fn",
// "$" and "app" are accepted as aliases.
func Builtins(tk Toolkit) Table {
	plugin := &ElementPlugin{Toolkit: tk}
	global := &GlobalFunction{Toolkit: tk}
	app := &AppModule{Toolkit: tk}
	return Table{
		ElementPluginType:  plugin,
		"$.fn":             plugin,
		GlobalFunctionType: global,
		"$":                global,
		AppModuleType:      app,
		"app":              app,
	}
}

// Lookup returns the strategy registered for tag.
func (t Table) Lookup(tag string) (Strategy, bool) {
	if tag == "" {
		return nil, false
	}
	s, ok := t[tag]
	return s, ok
}

func checkHandle(d *dependency.Descriptor, kind string, exists bool) error {
	if d.Handle == "" {
		return fmt.Errorf("%s: %w", kind, dependency.ErrNoHandle)
	}
	if !exists {
		return fmt.Errorf("%s %q: %w", kind, d.Handle, ErrCapabilityMissing)
	}
	return nil
}
