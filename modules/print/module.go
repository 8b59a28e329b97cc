// Package print provides capabilities that write what they were given, which
// makes manifests observable from the command line.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed lines. Nil means os.Stdout.
	Out io.Writer

	mu sync.Mutex
}

// Register registers the capabilities and callbacks with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterPlugin("print", m.PrintElements)
	r.RegisterGlobal("printConfig", m.PrintConfig)
	r.RegisterInit("PrintInit", m.PrintInit)
	r.RegisterDone("PrintDone", m.PrintDone)
	r.RegisterVariantInit("PrintVariant", m.PrintVariant)
}

// PrintElements is the "print" element plugin.
func (m *Module) PrintElements(_ context.Context, els dom.Selection, cfg dependency.Config) error {
	var b strings.Builder
	fmt.Fprintf(&b, "      print: %d element(s) %s\n", els.Len(), FormatConfig(cfg))
	for _, e := range els {
		fmt.Fprintf(&b, "        %s\n", Describe(e))
	}
	return m.write(b.String())
}

// PrintConfig is the "printConfig" global function.
func (m *Module) PrintConfig(_ context.Context, cfg dependency.Config) error {
	return m.write(fmt.Sprintf("      print: %s\n", FormatConfig(cfg)))
}

// PrintInit is an init callback for dependencies without a type.
func (m *Module) PrintInit(_ context.Context, els dom.Selection, d *dependency.Descriptor) error {
	return m.write(fmt.Sprintf("      init: %s (%d element(s)) %s\n", d.Key(), els.Len(), FormatConfig(d.Defaults)))
}

// PrintDone is a done callback announcing the completion key.
func (m *Module) PrintDone(els dom.Selection, d *dependency.Descriptor) {
	_ = m.write(fmt.Sprintf("      done: %s (%d element(s))\n", d.Key(), els.Len()))
}

// PrintVariant is a variant init callback.
func (m *Module) PrintVariant(els dom.Selection, d *dependency.Descriptor) {
	_ = m.write(fmt.Sprintf("      variant of %s: %d element(s)\n", d.Key(), els.Len()))
}

func (m *Module) write(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := io.WriteString(out, s)
	return err
}

// FormatConfig renders cfg with sorted keys.
func FormatConfig(cfg dependency.Config) string {
	if len(cfg) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, cfg[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Describe renders e as tag#id.class.
func Describe(e dom.Element) string {
	var b strings.Builder
	b.WriteString(e.Tag())
	if id, ok := e.Attr("id"); ok && id != "" {
		b.WriteString("#" + id)
	}
	if class, ok := e.Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			b.WriteString("." + c)
		}
	}
	if t, ok := e.Attr("data-type"); ok {
		fmt.Fprintf(&b, "[data-type=%s]", t)
	}
	return b.String()
}
