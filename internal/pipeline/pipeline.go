// Package pipeline turns a dependency's script requirement into a single
// completion signal.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/future"
	"github.com/vk/initr/internal/plan"
)

// Loader is the fetch capability the pipeline drives. *scriptcache.Cache
// satisfies it.
type Loader interface {
	Fetch(ctx context.Context, id string) *future.Future
	FetchAll(ctx context.Context, ids []string) *future.Future
}

// Kind classifies a load plan.
type Kind int

const (
	// None means the dependency needs no scripts.
	None Kind = iota
	// Prebundled means the scripts ship with the page already.
	Prebundled
	// Bundle fetches a single production bundle instead of Src.
	Bundle
	// Single fetches one script.
	Single
	// Concurrent fetches every script at once.
	Concurrent
	// Grouped fetches groups one after another.
	Grouped
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Prebundled:
		return "prebundled"
	case Bundle:
		return "bundle"
	case Single:
		return "single"
	case Concurrent:
		return "concurrent"
	case Grouped:
		return "grouped"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Plan is the resolved load strategy for one dependency. Groups holds the
// identifiers to fetch, one slice per sequential stage; every kind except
// Grouped has at most one stage.
type Plan struct {
	Kind   Kind
	Groups [][]string
}

// String renders the plan for humans.
func (p Plan) String() string {
	switch p.Kind {
	case None, Prebundled:
		return p.Kind.String()
	case Grouped:
		return p.Kind.String() + " " + plan.Describe(p.Groups)
	default:
		return p.Kind.String() + " [" + strings.Join(p.Groups[0], " ") + "]"
	}
}

// Pipeline resolves dependencies against a Loader.
type Pipeline struct {
	loader      Loader
	dev         bool
	preResolved *future.Future
}

// New creates a pipeline. Outside of dev mode a dependency's bundle, when
// present, replaces its script list.
func New(loader Loader, dev bool) *Pipeline {
	return &Pipeline{
		loader:      loader,
		dev:         dev,
		preResolved: future.Resolved(),
	}
}

// PlanFor computes the load plan for d without fetching anything.
func (p *Pipeline) PlanFor(d *dependency.Descriptor) Plan {
	if !p.dev && d.Bundle != nil {
		if d.Bundle.Path == "" {
			return Plan{Kind: Prebundled}
		}
		return Plan{Kind: Bundle, Groups: [][]string{{d.Bundle.Path}}}
	}
	if d.Src.Single != "" {
		return Plan{Kind: Single, Groups: [][]string{{plan.Strip(d.Src.Single)}}}
	}
	if len(d.Src.List) == 0 {
		return Plan{Kind: None}
	}
	groups, grouped := plan.Plan(d.Src.List)
	if !grouped {
		return Plan{Kind: Concurrent, Groups: [][]string{d.Src.List}}
	}
	return Plan{Kind: Grouped, Groups: groups}
}

// Resolve starts loading d's scripts and returns a future that settles when
// the last stage has loaded. A failing stage fails the future and no later
// stage is started.
func (p *Pipeline) Resolve(ctx context.Context, d *dependency.Descriptor) *future.Future {
	pl := p.PlanFor(d)
	ctxlog.FromContext(ctx).Debug("Resolved load plan.", "handle", d.Handle, "plan", pl.String())

	switch pl.Kind {
	case None, Prebundled:
		return p.preResolved
	case Bundle, Single:
		return p.loader.Fetch(ctx, pl.Groups[0][0])
	case Concurrent:
		return p.loader.FetchAll(ctx, pl.Groups[0])
	}

	f := p.loader.FetchAll(ctx, pl.Groups[0])
	for _, group := range pl.Groups[1:] {
		f = f.Then(func() *future.Future {
			return p.loader.FetchAll(ctx, group)
		})
	}
	return f
}
