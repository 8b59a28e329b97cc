package strategy

import (
	"context"
	"fmt"

	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
)

// GlobalFunction calls the global function named by the handle once with
// the dependency defaults. Elements are not targeted and the completion is
// recorded without them.
type GlobalFunction struct {
	Toolkit Toolkit
}

// Run implements Strategy.
func (s *GlobalFunction) Run(ctx context.Context, rec Recorder, d *dependency.Descriptor, _ dom.Selection) error {
	fn, ok := s.Toolkit.Global(d.Handle)
	if err := checkHandle(d, "global function", ok); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Running global function.", "handle", d.Handle)
	if err := fn(ctx, d.Defaults); err != nil {
		return fmt.Errorf("global function %q: %w", d.Handle, err)
	}
	return rec.Record(d, nil)
}
