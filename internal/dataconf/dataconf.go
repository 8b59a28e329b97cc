// Package dataconf loads manifests written as YAML or TOML documents. Both
// formats share one document schema:
//
//	settings:
//	  base_path: /js/
//	  timeout: 5s
//	dependencies:
//	  - handle: nav
//	    selector: .nav
//	    src: ["!a.js", "b.js"]
//	    variants:
//	      - key: wide
//	        config: {speed: 5}
package dataconf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/vk/initr/internal/config"
	"github.com/vk/initr/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

type document struct {
	Settings     settingsDoc      `yaml:"settings" toml:"settings"`
	Dependencies []*dependencyDoc `yaml:"dependencies" toml:"dependencies"`
}

type settingsDoc struct {
	BasePath           string `yaml:"base_path" toml:"base_path"`
	Dev                bool   `yaml:"dev" toml:"dev"`
	DisableScriptCache bool   `yaml:"disable_script_cache" toml:"disable_script_cache"`
	Timeout            string `yaml:"timeout" toml:"timeout"`
}

type dependencyDoc struct {
	Handle          string         `yaml:"handle" toml:"handle"`
	Name            string         `yaml:"name" toml:"name"`
	Selector        string         `yaml:"selector" toml:"selector"`
	Src             any            `yaml:"src" toml:"src"`
	Bundle          string         `yaml:"bundle" toml:"bundle"`
	Bundled         bool           `yaml:"bundled" toml:"bundled"`
	Type            string         `yaml:"type" toml:"type"`
	TypesBySelector bool           `yaml:"types_by_selector" toml:"types_by_selector"`
	Defaults        map[string]any `yaml:"defaults" toml:"defaults"`
	Variants        []*variantDoc  `yaml:"variants" toml:"variants"`
	Validate        string         `yaml:"validate" toml:"validate"`
	Init            string         `yaml:"init" toml:"init"`
	Done            string         `yaml:"done" toml:"done"`
	Next            *dependencyDoc `yaml:"next" toml:"next"`
}

type variantDoc struct {
	Key        string         `yaml:"key" toml:"key"`
	BySelector bool           `yaml:"by_selector" toml:"by_selector"`
	Config     map[string]any `yaml:"config" toml:"config"`
	Init       string         `yaml:"init" toml:"init"`
}

type decodeFunc func(data []byte, doc *document) error

// Loader is the config.Loader for one data format.
type Loader struct {
	format string
	decode decodeFunc
}

// NewYAMLLoader returns a loader for YAML manifests. Unknown fields are
// rejected.
func NewYAMLLoader() *Loader {
	return &Loader{format: "YAML", decode: func(data []byte, doc *document) error {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(doc)
	}}
}

// NewTOMLLoader returns a loader for TOML manifests. Unknown fields are
// rejected.
func NewTOMLLoader() *Loader {
	return &Loader{format: "TOML", decode: func(data []byte, doc *document) error {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(doc)
	}}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx).With("path", path, "format", l.format)
	logger.Debug("Data manifest loader started.")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var doc document
	if err := l.decode(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s manifest %s: %w", l.format, path, err)
	}

	model, err := doc.translate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Data manifest loading complete.", "dependencies", len(model.Dependencies))
	return model, nil
}

func (doc *document) translate() (*config.Model, error) {
	model := &config.Model{Settings: config.Settings{
		BasePath:           doc.Settings.BasePath,
		Dev:                doc.Settings.Dev,
		DisableScriptCache: doc.Settings.DisableScriptCache,
	}}
	if doc.Settings.Timeout != "" {
		d, err := time.ParseDuration(doc.Settings.Timeout)
		if err != nil {
			return nil, fmt.Errorf("settings: invalid timeout %q: %w", doc.Settings.Timeout, err)
		}
		model.Settings.Timeout = d
	}

	seen := make(map[string]struct{}, len(doc.Dependencies))
	for i, dd := range doc.Dependencies {
		if dd == nil || dd.Handle == "" {
			return nil, fmt.Errorf("dependency #%d: handle is required", i+1)
		}
		if _, dup := seen[dd.Handle]; dup {
			return nil, fmt.Errorf("dependency %q declared more than once", dd.Handle)
		}
		seen[dd.Handle] = struct{}{}

		spec, err := dd.translate()
		if err != nil {
			return nil, err
		}
		model.Dependencies = append(model.Dependencies, spec)
	}
	return model, nil
}

func (dd *dependencyDoc) translate() (*config.DependencySpec, error) {
	if dd.Bundle != "" && dd.Bundled {
		return nil, fmt.Errorf("dependency %q: bundle and bundled are mutually exclusive", dd.Handle)
	}
	spec := &config.DependencySpec{
		Handle:          dd.Handle,
		Name:            dd.Name,
		Selector:        dd.Selector,
		Bundle:          dd.Bundle,
		Bundled:         dd.Bundled,
		Type:            dd.Type,
		TypesBySelector: dd.TypesBySelector,
		Defaults:        normalizeMap(dd.Defaults),
		Validate:        dd.Validate,
		Init:            dd.Init,
		Done:            dd.Done,
	}

	switch src := dd.Src.(type) {
	case nil:
	case string:
		spec.Src = []string{src}
	case []any:
		spec.SrcList = true
		for _, item := range src {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("dependency %q: src entries must be strings, got %T", dd.Handle, item)
			}
			spec.Src = append(spec.Src, s)
		}
	default:
		return nil, fmt.Errorf("dependency %q: src must be a string or a list of strings, got %T", dd.Handle, dd.Src)
	}

	for _, vd := range dd.Variants {
		spec.Variants = append(spec.Variants, &config.VariantSpec{
			Key:        vd.Key,
			BySelector: vd.BySelector,
			Config:     normalizeMap(vd.Config),
			Init:       vd.Init,
		})
	}

	if dd.Next != nil {
		next, err := dd.Next.translate()
		if err != nil {
			return nil, fmt.Errorf("next of %q: %w", dd.Handle, err)
		}
		spec.Next = next
	}
	return spec, nil
}

// normalizeMap rewrites decoder specific number types so that both formats
// produce int and float64 values.
func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch t := v.(type) {
	case int64:
		return int(t)
	case map[string]any:
		return normalizeMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}
