package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
)

type (
	// ElementPlugin is a capability invoked over a set of elements.
	ElementPlugin func(ctx context.Context, els dom.Selection, cfg dependency.Config) error

	// GlobalFunc is a capability invoked once with configuration only.
	GlobalFunc func(ctx context.Context, cfg dependency.Config) error

	// Initializer is implemented by application modules that want to be
	// initialized. Modules without it are registered for presence only.
	Initializer interface {
		Init(ctx context.Context, els dom.Selection, d *dependency.Descriptor) error
	}
)

// Module is the interface that every capability module implements to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered capabilities and callbacks for a single
// application instance.
type Registry struct {
	mu           sync.RWMutex
	plugins      map[string]ElementPlugin
	globals      map[string]GlobalFunc
	modules      map[string]any
	validators   map[string]dependency.ValidateFunc
	initializers map[string]dependency.InitFunc
	doneHooks    map[string]dependency.DoneFunc
	variantHooks map[string]dependency.VariantInitFunc
}

// New creates an empty registry and registers the given modules into it.
func New(modules ...Module) *Registry {
	r := &Registry{
		plugins:      make(map[string]ElementPlugin),
		globals:      make(map[string]GlobalFunc),
		modules:      make(map[string]any),
		validators:   make(map[string]dependency.ValidateFunc),
		initializers: make(map[string]dependency.InitFunc),
		doneHooks:    make(map[string]dependency.DoneFunc),
		variantHooks: make(map[string]dependency.VariantInitFunc),
	}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

func register[T any](r *Registry, m map[string]T, kind, name string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := m[name]; exists {
		panic(fmt.Sprintf("%s with name '%s' already registered", kind, name))
	}
	slog.Debug("Registering capability.", "kind", kind, "name", name)
	m[name] = v
}

func lookup[T any](r *Registry, m map[string]T, name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := m[name]
	return v, ok
}

// RegisterPlugin registers an element plugin under name.
func (r *Registry) RegisterPlugin(name string, fn ElementPlugin) {
	register(r, r.plugins, "element plugin", name, fn)
}

// RegisterGlobal registers a global function under name.
func (r *Registry) RegisterGlobal(name string, fn GlobalFunc) {
	register(r, r.globals, "global function", name, fn)
}

// RegisterModule registers an application module under name. If module
// implements Initializer, its Init is called by the app-module strategy.
func (r *Registry) RegisterModule(name string, module any) {
	register(r, r.modules, "app module", name, module)
}

// RegisterValidator registers a named validate callback.
func (r *Registry) RegisterValidator(name string, fn dependency.ValidateFunc) {
	register(r, r.validators, "validator", name, fn)
}

// RegisterInit registers a named ad-hoc initializer.
func (r *Registry) RegisterInit(name string, fn dependency.InitFunc) {
	register(r, r.initializers, "initializer", name, fn)
}

// RegisterDone registers a named done callback.
func (r *Registry) RegisterDone(name string, fn dependency.DoneFunc) {
	register(r, r.doneHooks, "done hook", name, fn)
}

// RegisterVariantInit registers a named variant post-init hook.
func (r *Registry) RegisterVariantInit(name string, fn dependency.VariantInitFunc) {
	register(r, r.variantHooks, "variant hook", name, fn)
}

// Plugin returns the element plugin registered under name.
func (r *Registry) Plugin(name string) (ElementPlugin, bool) {
	return lookup(r, r.plugins, name)
}

// Global returns the global function registered under name.
func (r *Registry) Global(name string) (GlobalFunc, bool) {
	return lookup(r, r.globals, name)
}

// Module returns the application module registered under name.
func (r *Registry) Module(name string) (any, bool) {
	return lookup(r, r.modules, name)
}

// Validator returns the validate callback registered under name.
func (r *Registry) Validator(name string) (dependency.ValidateFunc, bool) {
	return lookup(r, r.validators, name)
}

// Init returns the ad-hoc initializer registered under name.
func (r *Registry) Init(name string) (dependency.InitFunc, bool) {
	return lookup(r, r.initializers, name)
}

// Done returns the done callback registered under name.
func (r *Registry) Done(name string) (dependency.DoneFunc, bool) {
	return lookup(r, r.doneHooks, name)
}

// VariantInit returns the variant hook registered under name.
func (r *Registry) VariantInit(name string) (dependency.VariantInitFunc, bool) {
	return lookup(r, r.variantHooks, name)
}

// Names lists the registered plugin, global and module names, sorted, for
// diagnostics.
func (r *Registry) Names() (plugins, globals, modules []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.plugins), sortedKeys(r.globals), sortedKeys(r.modules)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
