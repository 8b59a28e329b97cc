package config

import (
	"fmt"
	"time"
)

// Model is the unified, format-agnostic representation of a manifest.
type Model struct {
	Settings     Settings
	Dependencies []*DependencySpec
}

// Settings are the coordinator options a manifest may carry.
type Settings struct {
	BasePath           string
	Dev                bool
	DisableScriptCache bool
	Timeout            time.Duration
}

// DependencySpec is the format-agnostic representation of a `dependency`
// block. Callback fields hold the names under which Go functions were
// registered.
type DependencySpec struct {
	Handle   string
	Name     string
	Selector string

	// Src holds the script identifiers. SrcList distinguishes a one-element
	// list from a single script.
	Src     []string
	SrcList bool

	Bundle  string
	Bundled bool

	Type            string
	TypesBySelector bool
	Defaults        map[string]any
	Variants        []*VariantSpec

	Validate string
	Init     string
	Done     string

	Next *DependencySpec
}

// VariantSpec is the format-agnostic representation of a `variant` block.
type VariantSpec struct {
	Key        string
	BySelector bool
	Config     map[string]any
	Init       string
}

// checkHandles reports the first handle declared by two top-level
// dependencies.
func (m *Model) checkHandles() error {
	seen := make(map[string]struct{}, len(m.Dependencies))
	for _, d := range m.Dependencies {
		if _, dup := seen[d.Handle]; dup {
			return fmt.Errorf("dependency %q is declared more than once", d.Handle)
		}
		seen[d.Handle] = struct{}{}
	}
	return nil
}
