package initr

import (
	"context"
	"errors"

	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/events"
	"github.com/vk/initr/internal/future"
	"github.com/vk/initr/internal/strategy"
)

// runDependency gates d, loads its scripts unless loaded is set and hands it
// to an initializer. Only subscriber failures are returned; everything else
// ends up in the outcomes.
func (c *Coordinator) runDependency(ctx context.Context, d *dependency.Descriptor, loaded bool) error {
	logger := ctxlog.FromContext(ctx).With("handle", d.String())

	var els dom.Selection
	if d.Selector != "" {
		if c.doc == nil {
			logger.Debug("Selector given but there is no document.", "selector", d.Selector)
			c.report(d, StatusMisconfigured, ErrNoDocument)
			return nil
		}
		found, err := c.doc.Query(d.Selector)
		if err != nil {
			logger.Debug("Selector could not be evaluated.", "selector", d.Selector, "error", err)
			c.report(d, StatusMisconfigured, err)
			return nil
		}
		if found.Len() == 0 {
			logger.Debug("Selector did not match any elements.", "selector", d.Selector)
			c.report(d, StatusNoMatch, nil)
			return nil
		}
		els = found
	}

	if d.Validate != nil && !d.Validate(els, d) {
		logger.Debug("Validate function did not pass.")
		c.report(d, StatusInvalid, nil)
		return nil
	}

	if !d.HasScripts() || loaded {
		return c.initDependency(ctx, d, els)
	}

	f := c.pipeline.Resolve(ctx, d)
	if f.Settled() {
		return c.afterLoad(ctx, f, d, els)
	}
	c.pending.add()
	go func() {
		defer c.pending.done()
		// The continuation has nobody to return to.
		_ = c.afterLoad(ctx, f, d, els)
	}()
	return nil
}

func (c *Coordinator) afterLoad(ctx context.Context, f *future.Future, d *dependency.Descriptor, els dom.Selection) error {
	if err := f.Wait(ctx); err != nil {
		ctxlog.FromContext(ctx).Debug("Failed to load dependencies.", "handle", d.String(), "error", err)
		c.report(d, StatusLoadFailed, err)
		return nil
	}
	return c.initDependency(ctx, d, els)
}

// initDependency dispatches d to the strategy named by its type, falling back
// to its init callback.
func (c *Coordinator) initDependency(ctx context.Context, d *dependency.Descriptor, els dom.Selection) error {
	logger := ctxlog.FromContext(ctx).With("handle", d.String())

	if s, ok := c.strategies.Lookup(d.Type); ok {
		logger.Debug("Initializing dependency.", "type", d.Type, "elements", els.Len())
		return c.settle(d, s.Run(ctx, c.completions, d, els))
	}
	if d.Type != "" {
		logger.Debug("Unknown dependency type.", "type", d.Type)
	}

	if d.Init == nil {
		logger.Debug("No init function.")
		c.report(d, StatusMisconfigured, ErrNoInitializer)
		return nil
	}
	logger.Debug("Running anonymous init.", "elements", els.Len())
	if err := d.Init(ctx, els, d); err != nil {
		c.report(d, StatusInitFailed, err)
		return nil
	}
	// Only strategies record completions.
	c.report(d, StatusDone, nil)
	return nil
}

// settle reports the result of an initializer. Subscriber failures are
// returned to the caller.
func (c *Coordinator) settle(d *dependency.Descriptor, err error) error {
	var subErr *events.SubscriberError
	switch {
	case err == nil:
		c.report(d, StatusDone, nil)
		return nil
	case errors.As(err, &subErr):
		ctxlog.FromContext(c.ctx).Debug("Subscriber failed.", "handle", d.String(), "event", subErr.Event, "error", subErr.Err)
		c.report(d, StatusSubscriberFailed, err)
		return err
	case errors.Is(err, dependency.ErrNoHandle), errors.Is(err, strategy.ErrCapabilityMissing):
		ctxlog.FromContext(c.ctx).Debug("Dependency is misconfigured.", "handle", d.String(), "error", err)
		c.report(d, StatusMisconfigured, err)
		return nil
	default:
		ctxlog.FromContext(c.ctx).Debug("Initializer failed.", "handle", d.String(), "error", err)
		c.report(d, StatusInitFailed, err)
		return nil
	}
}
