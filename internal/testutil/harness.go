package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/initr/internal/app"
	"github.com/vk/initr/internal/registry"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Report    *app.Report
	Err       error
	App       *app.App
	Fetcher   *FakeFetcher
}

// HarnessOptions configures RunIntegrationTest. The zero value runs
// "initr.hcl" against "index.html" with the core modules.
type HarnessOptions struct {
	Manifest string            // file name of the manifest among the files
	Page     string            // file name of the page among the files
	Modules  []registry.Module // nil registers the core modules
	Fetcher  *FakeFetcher      // nil uses an instant fetcher
	Dev      *bool
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, opts HarnessOptions) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts)
}

// RunIntegrationTestWithContext writes files to a temporary directory, builds
// an app around them and runs it to completion with ctx.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts HarnessOptions) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	if opts.Manifest == "" {
		opts.Manifest = "initr.hcl"
	}
	if opts.Page == "" {
		opts.Page = "index.html"
	}
	if opts.Fetcher == nil {
		opts.Fetcher = NewFakeFetcher(0)
	}

	cfg, err := app.NewConfig(app.Config{
		ManifestPath: filepath.Join(tmpDir, opts.Manifest),
		PagePath:     filepath.Join(tmpDir, opts.Page),
		Dev:          opts.Dev,
		LogLevel:     "debug",
		LogFormat:    "text",
	})
	require.NoError(t, err)

	logBuffer := &app.SafeBuffer{}
	res := &HarnessResult{Fetcher: opts.Fetcher}
	defer func() {
		res.LogOutput = logBuffer.String()
		if os.Getenv("INITR_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.LogOutput)
		}
	}()

	res.App, res.Err = app.NewApp(logBuffer, cfg, opts.Modules, app.WithFetcher(opts.Fetcher))
	if res.Err != nil {
		return res
	}
	res.Report, res.Err = res.App.Run(ctx)
	return res
}
