package strategy

import (
	"context"
	"fmt"

	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/registry"
)

const (
	// VariantAttr is the attribute compared against variant keys unless
	// variants are matched by selector.
	VariantAttr = "data-type"
	// bySelectorKey switches variant matching to selectors when set in a
	// dependency's defaults.
	bySelectorKey = "initrTypeBySelector"
)

// ElementPlugin invokes the element plugin named by the handle over the
// matched elements, once per variant and once for the unclaimed rest.
type ElementPlugin struct {
	Toolkit Toolkit
}

// Run implements Strategy.
func (s *ElementPlugin) Run(ctx context.Context, rec Recorder, d *dependency.Descriptor, els dom.Selection) error {
	logger := ctxlog.FromContext(ctx).With("handle", d.Handle, "type", ElementPluginType)
	plugin, ok := s.Toolkit.Plugin(d.Handle)
	if err := checkHandle(d, "element plugin", ok); err != nil {
		return err
	}

	if len(d.Types) == 0 {
		logger.Debug("No variants, initializing all elements with defaults.", "elements", els.Len())
		if err := plugin(ctx, els, d.Defaults); err != nil {
			return fmt.Errorf("element plugin %q: %w", d.Handle, err)
		}
		return rec.Record(d, els)
	}

	claimed, err := s.runVariants(ctx, plugin, d, els)
	if err != nil {
		return err
	}

	rest := els
	if len(claimed) == 0 {
		logger.Debug("No element matched a variant, initializing all elements with defaults.", "elements", els.Len())
	} else {
		rest = els.Not(dom.Merge(claimed...))
		logger.Debug("Initializing left over elements with defaults.", "elements", rest.Len())
	}
	if rest.Len() > 0 || len(claimed) == 0 {
		if err := plugin(ctx, rest, d.Defaults); err != nil {
			return fmt.Errorf("element plugin %q: %w", d.Handle, err)
		}
	}
	return rec.Record(d, els)
}

// runVariants initializes each variant's elements with defaults overlaid by
// the variant config and returns the non-empty subsets it handled.
func (s *ElementPlugin) runVariants(ctx context.Context, plugin registry.ElementPlugin, d *dependency.Descriptor, els dom.Selection) ([]dom.Selection, error) {
	logger := ctxlog.FromContext(ctx).With("handle", d.Handle, "type", ElementPluginType)
	bySelector := d.TypesBySelector || d.Defaults.Bool(bySelectorKey)

	var claimed []dom.Selection
	for _, v := range d.Types {
		var subset dom.Selection
		if v.BySelector || bySelector {
			var err error
			if subset, err = els.FilterSelector(v.Key); err != nil {
				return nil, fmt.Errorf("variant %q of %q: %w", v.Key, d.Handle, err)
			}
		} else {
			subset = els.FilterAttr(VariantAttr, v.Key)
		}
		if subset.Len() == 0 {
			continue
		}

		options := dependency.Merge(d.Defaults, v.Config)
		logger.Debug("Initializing variant.", "variant", v.Key, "elements", subset.Len(), "options", options)
		if err := plugin(ctx, subset, options); err != nil {
			return nil, fmt.Errorf("element plugin %q, variant %q: %w", d.Handle, v.Key, err)
		}
		if v.Init != nil {
			v.Init(subset, d)
		}
		claimed = append(claimed, subset)
	}
	return claimed, nil
}
