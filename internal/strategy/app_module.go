package strategy

import (
	"context"
	"fmt"

	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/registry"
)

// AppModule initializes the application module named by the handle. A
// module without an Init method is left alone but still counts as done.
type AppModule struct {
	Toolkit Toolkit
}

// Run implements Strategy.
func (s *AppModule) Run(ctx context.Context, rec Recorder, d *dependency.Descriptor, els dom.Selection) error {
	module, ok := s.Toolkit.Module(d.Handle)
	if err := checkHandle(d, "app module", ok); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)
	if initializer, ok := module.(registry.Initializer); ok {
		logger.Debug("Running app module init.", "handle", d.Handle)
		if err := initializer.Init(ctx, els, d); err != nil {
			return fmt.Errorf("app module %q: %w", d.Handle, err)
		}
	} else {
		logger.Debug("App module has no init.", "handle", d.Handle)
	}
	return rec.Record(d, els)
}
