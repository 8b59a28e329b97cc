// Package initr runs dependency descriptors against a page: it gates each
// dependency on its selector and validator, loads its scripts, dispatches it
// to an initializer and announces completions.
package initr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vk/initr/internal/completion"
	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/events"
	"github.com/vk/initr/internal/pipeline"
	"github.com/vk/initr/internal/registry"
	"github.com/vk/initr/internal/scriptcache"
	"github.com/vk/initr/internal/strategy"
)

// Options configures a Coordinator.
type Options struct {
	// BasePath is prepended to script identifiers that are not absolute
	// http(s) URLs.
	BasePath string
	// Dev enables diagnostics and makes dependencies load Src instead of
	// their bundle.
	Dev bool
	// DisableScriptCache fetches every script again on every request.
	DisableScriptCache bool
	// Timeout bounds every single fetch. Zero means no limit.
	Timeout time.Duration

	// Fetcher retrieves and executes scripts. Required when any dependency
	// loads scripts.
	Fetcher scriptcache.Fetcher
	// Registry holds the capabilities strategies dispatch to.
	Registry *registry.Registry
	// Strategies overrides the built-in strategy table.
	Strategies strategy.Table
	// Metrics is optional.
	Metrics *scriptcache.Metrics
	// Logger receives diagnostics when Dev is set.
	Logger *slog.Logger
}

// Coordinator owns the script cache, the completion store and the event bus
// of one page.
type Coordinator struct {
	ctx         context.Context
	doc         dom.Document
	diag        *slog.Logger
	cache       *scriptcache.Cache
	pipeline    *pipeline.Pipeline
	strategies  strategy.Table
	completions *completion.Store
	bus         *events.Bus
	pending     tracker

	mu       sync.Mutex
	outcomes []Outcome
}

// New creates a coordinator and starts running deps in order. Dependencies
// that load nothing complete before New returns; the others complete
// asynchronously, see Wait. ctx bounds the asynchronous continuations.
func New(ctx context.Context, doc dom.Document, deps []*dependency.Descriptor, opts Options) *Coordinator {
	c := newCoordinator(ctx, doc, opts)
	c.start(deps)
	return c
}

func newCoordinator(ctx context.Context, doc dom.Document, opts Options) *Coordinator {
	diag := slog.New(slog.DiscardHandler)
	if opts.Dev && opts.Logger != nil {
		diag = opts.Logger
	}
	reg := opts.Registry
	if reg == nil {
		reg = registry.New()
	}
	strategies := opts.Strategies
	if strategies == nil {
		strategies = strategy.Builtins(reg)
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = scriptcache.FetcherFunc(func(context.Context, string) error {
			return errors.New("no script fetcher configured")
		})
	}

	cache := scriptcache.New(fetcher, scriptcache.Options{
		BasePath: opts.BasePath,
		Disabled: opts.DisableScriptCache,
		Timeout:  opts.Timeout,
	}, opts.Metrics)

	completions := completion.NewStore()
	bus := events.NewBus(completions)
	completions.SetPublisher(bus)

	return &Coordinator{
		ctx:         ctxlog.WithLogger(ctx, diag),
		doc:         doc,
		diag:        diag,
		cache:       cache,
		pipeline:    pipeline.New(cache, opts.Dev),
		strategies:  strategies,
		completions: completions,
		bus:         bus,
	}
}

func (c *Coordinator) start(deps []*dependency.Descriptor) {
	if len(deps) == 0 {
		c.diag.Debug("No dependencies passed.")
		return
	}
	for _, d := range deps {
		// Subscriber failures are kept in the outcomes.
		_ = c.runDependency(c.ctx, d, false)
	}
}

// On subscribes h to the event name. A completed handle is replayed to h
// immediately and the error h returns is passed back.
func (c *Coordinator) On(name string, h events.Handler) error {
	return c.bus.Subscribe(name, h)
}

// Trigger delivers an event to the subscribers of name. name is not
// normalized.
func (c *Coordinator) Trigger(name string, els dom.Selection, d *dependency.Descriptor) error {
	return c.bus.Publish(name, els, d)
}

// Run re-runs the chained dependency of the completed dependency stored under
// handle. The chained dependency goes through the selector and validation
// gates again but does not load scripts. Handles without a chained
// dependency are a no-op.
func (c *Coordinator) Run(ctx context.Context, handle string) error {
	rec, ok := c.completions.Get(handle)
	if !ok {
		c.diag.Debug("Nothing to run, dependency has not completed.", "handle", handle)
		return fmt.Errorf("run %q: %w", handle, ErrNotCompleted)
	}
	next := rec.Descriptor.Next
	if next == nil {
		c.diag.Debug("Dependency has no chained dependency.", "handle", handle)
		return nil
	}
	return c.runDependency(ctxlog.WithLogger(ctx, c.diag), next, true)
}

// Wait blocks until every load started so far has been handled.
func (c *Coordinator) Wait(ctx context.Context) error {
	return c.pending.wait(ctx)
}

// Completed returns the completion stored under key.
func (c *Coordinator) Completed(key string) (completion.Record, bool) {
	return c.completions.Get(key)
}

// Outcomes returns the result of every dependency run so far, in the order
// the runs ended.
func (c *Coordinator) Outcomes() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Outcome(nil), c.outcomes...)
}

// Skipped returns the outcomes of runs that did not complete.
func (c *Coordinator) Skipped() []Outcome {
	var skipped []Outcome
	for _, o := range c.Outcomes() {
		if o.Status.Skipped() {
			skipped = append(skipped, o)
		}
	}
	return skipped
}

func (c *Coordinator) report(d *dependency.Descriptor, status Status, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, Outcome{Handle: d.String(), Status: status, Err: err})
}
