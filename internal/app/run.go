package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/dom/htmldoc"
	"github.com/vk/initr/internal/initr"
	"github.com/vk/initr/internal/notify"
)

// Run loads the page, runs every manifest dependency against it and waits
// until all loads have been handled. With a status port the status server
// keeps serving until ctx is cancelled.
func (a *App) Run(ctx context.Context) (*Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.StatusPort > 0 {
		a.startStatusServer(a.config.StatusPort)
		defer a.closeStatusServer()
	}

	var doc dom.Document
	if a.config.PagePath != "" {
		page, err := htmldoc.Load(a.config.PagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load page: %w", err)
		}
		doc = page
		a.logger.Debug("Page loaded.", "path", a.config.PagePath)
	}

	deps, err := a.model.Descriptors(a.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependencies: %w", err)
	}

	settings := a.settings()
	a.logger.Info("Starting dependency run.",
		"dependencies", len(deps),
		"base_path", settings.BasePath,
		"dev", settings.Dev,
		"script_cache", !settings.DisableScriptCache,
	)

	c := initr.New(ctx, doc, deps, initr.Options{
		BasePath:           settings.BasePath,
		Dev:                settings.Dev,
		DisableScriptCache: settings.DisableScriptCache,
		Timeout:            settings.Timeout,
		Fetcher:            a.fetcher,
		Registry:           a.registry,
		Metrics:            a.metrics,
		Logger:             a.diagLogger(settings.Dev),
	})
	a.status.set(c)

	if a.config.NotifyURL != "" {
		if closeFn := a.forward(ctx, c, deps); closeFn != nil {
			defer closeFn()
		}
	}

	if err := c.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for dependencies: %w", err)
	}

	report := &Report{RunID: a.runID, Outcomes: c.Outcomes(), Scripts: a.journal.Scripts()}
	for _, o := range report.Outcomes {
		if o.Status.Skipped() {
			a.logger.Debug("Dependency skipped.", "handle", o.Handle, "status", o.Status, "error", o.Err)
		}
	}
	a.logger.Info("Dependency run finished.", "completed", report.Completed(), "skipped", len(report.Outcomes)-report.Completed())

	if a.config.StatusPort > 0 {
		a.logger.Info("Serving status until interrupted.")
		<-ctx.Done()
	}
	return report, nil
}

// diagLogger returns the logger that receives coordinator diagnostics. Dev
// runs log them at debug level whatever the configured level is.
func (a *App) diagLogger(dev bool) *slog.Logger {
	if !dev {
		return a.logger
	}
	return newLogger("debug", a.config.LogFormat, a.outW).With("run_id", a.runID)
}

// forward emits completions to the notify endpoint. Notification problems
// are logged and never fail the run.
func (a *App) forward(ctx context.Context, c *initr.Coordinator, deps []*dependency.Descriptor) func() {
	client, err := notify.Dial(ctx, a.config.NotifyURL)
	if err != nil {
		a.logger.Warn("Notify endpoint unavailable, completions are not forwarded.", "url", a.config.NotifyURL, "error", err)
		return nil
	}

	keys := make([]string, 0, len(deps))
	for _, d := range deps {
		for cur := d; cur != nil; cur = cur.Next {
			keys = append(keys, cur.Key())
		}
	}
	if err := notify.NewForwarder(client, a.runID).Attach(c, keys...); err != nil {
		a.logger.Warn("Forwarding completions failed.", "error", err)
	}
	a.logger.Debug("Forwarding completions.", "url", a.config.NotifyURL, "keys", len(keys))
	return client.Close
}
