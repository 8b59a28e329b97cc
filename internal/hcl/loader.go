package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/initr/internal/config"
	"github.com/vk/initr/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the manifest at path and translates it into the model.
// Dependencies keep their declaration order.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)
	logger.Debug("HCL loader started.")

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model := &config.Model{}
	if root.Settings != nil {
		settings, err := translateSettings(root.Settings)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		model.Settings = settings
	}

	seen := make(map[string]struct{}, len(root.Dependencies))
	for _, block := range root.Dependencies {
		if _, dup := seen[block.Handle]; dup {
			return nil, fmt.Errorf("%s: dependency %q declared more than once", path, block.Handle)
		}
		seen[block.Handle] = struct{}{}

		spec, err := l.translateDependency(ctx, block.Handle, block.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		model.Dependencies = append(model.Dependencies, spec)
	}

	logger.Debug("HCL loading complete.", "dependencies", len(model.Dependencies))
	return model, nil
}

func translateSettings(s *settingsBlock) (config.Settings, error) {
	out := config.Settings{
		BasePath:           str(s.BasePath),
		Dev:                boolean(s.Dev),
		DisableScriptCache: boolean(s.DisableScriptCache),
	}
	if s.Timeout != nil {
		d, err := time.ParseDuration(*s.Timeout)
		if err != nil {
			return out, fmt.Errorf("settings: invalid timeout %q: %w", *s.Timeout, err)
		}
		out.Timeout = d
	}
	return out, nil
}
