package config

import (
	"errors"
	"fmt"

	"github.com/vk/initr/internal/dependency"
)

// ErrUnknownCallback is returned when a manifest names a callback nobody
// registered.
var ErrUnknownCallback = errors.New("unknown callback")

// Callbacks resolves callback names. *registry.Registry implements it.
type Callbacks interface {
	Validator(name string) (dependency.ValidateFunc, bool)
	Init(name string) (dependency.InitFunc, bool)
	Done(name string) (dependency.DoneFunc, bool)
	VariantInit(name string) (dependency.VariantInitFunc, bool)
}

// Descriptors builds the dependency descriptors of m in manifest order.
func (m *Model) Descriptors(cb Callbacks) ([]*dependency.Descriptor, error) {
	out := make([]*dependency.Descriptor, 0, len(m.Dependencies))
	for _, spec := range m.Dependencies {
		d, err := spec.Descriptor(cb)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Descriptor builds the descriptor for s and its chained dependencies.
func (s *DependencySpec) Descriptor(cb Callbacks) (*dependency.Descriptor, error) {
	d := &dependency.Descriptor{
		Handle:          s.Handle,
		Name:            s.Name,
		Selector:        s.Selector,
		Type:            s.Type,
		TypesBySelector: s.TypesBySelector,
		Defaults:        dependency.Config(s.Defaults),
	}

	switch {
	case s.SrcList:
		d.Src = dependency.List(s.Src...)
	case len(s.Src) == 1:
		d.Src = dependency.One(s.Src[0])
	case len(s.Src) > 1:
		d.Src = dependency.List(s.Src...)
	}
	if s.Bundle != "" || s.Bundled {
		d.Bundle = &dependency.Bundle{Path: s.Bundle, Prebundled: s.Bundle == ""}
	}

	var err error
	if d.Validate, err = resolve(s.Handle, "validate", s.Validate, cb.Validator); err != nil {
		return nil, err
	}
	if d.Init, err = resolve(s.Handle, "init", s.Init, cb.Init); err != nil {
		return nil, err
	}
	if d.Done, err = resolve(s.Handle, "done", s.Done, cb.Done); err != nil {
		return nil, err
	}

	for _, v := range s.Variants {
		variant := dependency.Variant{Key: v.Key, BySelector: v.BySelector, Config: dependency.Config(v.Config)}
		if variant.Init, err = resolve(s.Handle, "variant init", v.Init, cb.VariantInit); err != nil {
			return nil, err
		}
		d.Types = append(d.Types, variant)
	}

	if s.Next != nil {
		if d.Next, err = s.Next.Descriptor(cb); err != nil {
			return nil, fmt.Errorf("next of %q: %w", s.Handle, err)
		}
	}
	if err := d.Check(); err != nil {
		return nil, err
	}
	return d, nil
}

func resolve[T any](handle, kind, name string, lookup func(string) (T, bool)) (T, error) {
	var zero T
	if name == "" {
		return zero, nil
	}
	fn, ok := lookup(name)
	if !ok {
		return zero, fmt.Errorf("dependency %q: %s %q: %w", handle, kind, name, ErrUnknownCallback)
	}
	return fn, nil
}
