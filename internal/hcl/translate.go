// This file translates decoded HCL dependency blocks into the
// format-agnostic configuration model.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/initr/internal/config"
	"github.com/vk/initr/internal/ctxlog"
)

// translateDependency decodes body into a dependency spec, following `next`
// blocks recursively.
func (l *Loader) translateDependency(ctx context.Context, handle string, body hcl.Body) (*config.DependencySpec, error) {
	logger := ctxlog.FromContext(ctx).With("dependency", handle)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL dependency to internal config model.")

	var b dependencyBody
	if diags := gohcl.DecodeBody(body, nil, &b); diags.HasErrors() {
		return nil, fmt.Errorf("dependency %q: %w", handle, diags)
	}
	if b.Bundle != nil && boolean(b.Bundled) {
		return nil, fmt.Errorf("dependency %q: bundle and bundled are mutually exclusive", handle)
	}

	spec := &config.DependencySpec{
		Handle:          handle,
		Name:            str(b.Name),
		Selector:        str(b.Selector),
		Bundle:          str(b.Bundle),
		Bundled:         boolean(b.Bundled),
		Type:            str(b.Type),
		TypesBySelector: boolean(b.TypesBySelector),
		Validate:        str(b.Validate),
		Init:            str(b.Init),
		Done:            str(b.Done),
	}

	if isExprDefined(ctx, b.Src, "src") {
		v, diags := b.Src.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("dependency %q: src: %w", handle, diags)
		}
		ids, list, err := toSources(v)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: src: %w", handle, err)
		}
		spec.Src, spec.SrcList = ids, list
	}

	if isExprDefined(ctx, b.Defaults, "defaults") {
		defaults, err := evalConfig(b.Defaults)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: defaults: %w", handle, err)
		}
		spec.Defaults = defaults
	}

	for _, vb := range b.Variants {
		variant, err := translateVariant(ctx, vb)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", handle, err)
		}
		spec.Variants = append(spec.Variants, variant)
	}

	if b.Next != nil {
		logger.Debug("Translating chained dependency.", "next", b.Next.Handle)
		next, err := l.translateDependency(ctx, b.Next.Handle, b.Next.Body)
		if err != nil {
			return nil, fmt.Errorf("next of %q: %w", handle, err)
		}
		spec.Next = next
	}
	return spec, nil
}

func translateVariant(ctx context.Context, vb *variantBlock) (*config.VariantSpec, error) {
	variant := &config.VariantSpec{
		Key:        vb.Key,
		BySelector: boolean(vb.BySelector),
		Init:       str(vb.Init),
	}
	if isExprDefined(ctx, vb.Config, "config") {
		cfg, err := evalConfig(vb.Config)
		if err != nil {
			return nil, fmt.Errorf("variant %q: config: %w", vb.Key, err)
		}
		variant.Config = cfg
	}
	return variant, nil
}

func evalConfig(expr hcl.Expression) (map[string]any, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return toConfig(v)
}
