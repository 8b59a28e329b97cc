package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/initr/internal/initr"
	"github.com/vk/initr/internal/scriptcache"
)

const testManifest = `
settings {
  base_path = "js/"
}

dependency "print" {
  selector = ".nav"
  src      = ["!lib.js", "nav.js"]
  type     = "element-plugin"
  name     = "nav"
  done     = "PrintDone"
}

dependency "gallery" {
  selector = ".gallery"
  src      = "gallery.js"
  init     = "PrintInit"
}

dependency "attrs" {
  selector = "[data-type]"
  type     = "app-module"
}
`

const testPage = `<html><body><nav class="nav" data-type="main"></nav></body></html>`

func writeSite(t *testing.T) (manifest, page string) {
	t.Helper()
	dir := t.TempDir()
	manifest = filepath.Join(dir, "initr.hcl")
	page = filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(manifest, []byte(testManifest), 0o600))
	require.NoError(t, os.WriteFile(page, []byte(testPage), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))
	for _, name := range []string{"lib.js", "nav.js"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "js", name), []byte("/* "+name+" */"), 0o600))
	}
	return manifest, page
}

func TestNewApp_RegistersCoreModules(t *testing.T) {
	manifest, page := writeSite(t)

	a, _ := SetupAppTest(t, &Config{ManifestPath: manifest, PagePath: page, LogFormat: "text"}, nil)

	plugins, globals, modules := a.Registry().Names()
	assert.Equal(t, []string{"print"}, plugins)
	assert.Equal(t, []string{"printConfig"}, globals)
	assert.Equal(t, []string{"attrs"}, modules)
	assert.NotEmpty(t, a.RunID())
}

func TestNewApp_MissingManifest(t *testing.T) {
	_, err := NewApp(&bytes.Buffer{}, &Config{ManifestPath: filepath.Join(t.TempDir(), "nope.hcl")}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load manifest")
}

func TestApp_SettingsOverrides(t *testing.T) {
	manifest, page := writeSite(t)
	base := "/static/"
	dev := true
	timeout := 2 * time.Second

	a, _ := SetupAppTest(t, &Config{
		ManifestPath: manifest,
		PagePath:     page,
		LogFormat:    "text",
		BasePath:     &base,
		Dev:          &dev,
		Timeout:      &timeout,
	}, nil)

	s := a.settings()
	assert.Equal(t, "/static/", s.BasePath)
	assert.True(t, s.Dev)
	assert.False(t, s.DisableScriptCache)
	assert.Equal(t, 2*time.Second, s.Timeout)
	assert.Equal(t, filepath.Dir(page), a.scriptRoot())
}

func TestApp_RunReadsScriptsFromDisk(t *testing.T) {
	manifest, page := writeSite(t)
	a, logs := SetupAppTest(t, &Config{ManifestPath: manifest, PagePath: page, LogFormat: "text"}, nil)

	report, err := a.Run(context.Background())

	require.NoError(t, err)
	statuses := map[string]initr.Status{}
	for _, o := range report.Outcomes {
		statuses[o.Handle] = o.Status
	}
	assert.Equal(t, map[string]initr.Status{
		"print":   initr.StatusDone,
		"gallery": initr.StatusNoMatch,
		"attrs":   initr.StatusDone,
	}, statuses)

	require.Len(t, report.Scripts, 2)
	assert.Equal(t, "js/lib.js", report.Scripts[0].URL)
	assert.Equal(t, "js/nav.js", report.Scripts[1].URL)

	out := logs.String()
	assert.Contains(t, out, "print: 1 element(s)")
	assert.Contains(t, out, "done: nav")
	assert.Contains(t, out, "Dependency run finished.")
}

func TestApp_RunDevLogsDiagnosticsAtDefaultLevel(t *testing.T) {
	manifest, page := writeSite(t)
	dev := true
	logs := &SafeBuffer{}
	a, err := NewApp(logs, &Config{ManifestPath: manifest, PagePath: page, LogLevel: "info", LogFormat: "text", Dev: &dev}, nil,
		WithFetcher(scriptcache.FetcherFunc(func(context.Context, string) error { return nil })))
	require.NoError(t, err)

	_, err = a.Run(context.Background())

	require.NoError(t, err)
	out := logs.String()
	assert.Contains(t, out, "Selector did not match any elements.")
	assert.NotContains(t, out, "App.Run method started.", "app debug records stay filtered")
}

func TestApp_RunWithoutDevHidesDiagnostics(t *testing.T) {
	manifest, page := writeSite(t)
	logs := &SafeBuffer{}
	a, err := NewApp(logs, &Config{ManifestPath: manifest, PagePath: page, LogLevel: "info", LogFormat: "text"}, nil,
		WithFetcher(scriptcache.FetcherFunc(func(context.Context, string) error { return nil })))
	require.NoError(t, err)

	_, err = a.Run(context.Background())

	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "Selector did not match any elements.")
}

func TestApp_RunWithFetcher(t *testing.T) {
	manifest, page := writeSite(t)
	var mu sync.Mutex
	var urls []string
	fetcher := scriptcache.FetcherFunc(func(_ context.Context, url string) error {
		mu.Lock()
		defer mu.Unlock()
		urls = append(urls, url)
		return nil
	})
	a, _ := SetupAppTest(t, &Config{ManifestPath: manifest, PagePath: page, LogFormat: "text"}, nil, WithFetcher(fetcher))

	report, err := a.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Completed())
	assert.Equal(t, []string{"js/lib.js", "js/nav.js"}, urls)
	assert.Empty(t, report.Scripts, "the journal only sees the built-in fetcher")
}

func TestApp_Plan(t *testing.T) {
	manifest, _ := writeSite(t)
	a, _ := SetupAppTest(t, &Config{ManifestPath: manifest, LogFormat: "text"}, nil)

	lines, err := a.Plan()
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, WritePlan(&out, lines))
	assert.Equal(t, "print: grouped [lib.js] -> [nav.js]\ngallery: single [gallery.js]\nattrs: none\n", out.String())
}

func TestReport_Write(t *testing.T) {
	r := &Report{Outcomes: []initr.Outcome{
		{Handle: "nav", Status: initr.StatusDone},
		{Handle: "gallery", Status: initr.StatusNoMatch},
	}}

	var out strings.Builder
	require.NoError(t, r.Write(&out))

	assert.Regexp(t, `(?m)^nav\s+done`, out.String())
	assert.Regexp(t, `(?m)^gallery\s+no-match`, out.String())
	assert.Contains(t, out.String(), "1/2 dependencies completed, 0 scripts executed")
}

func TestStatusMux(t *testing.T) {
	manifest, page := writeSite(t)
	a, _ := SetupAppTest(t, &Config{ManifestPath: manifest, PagePath: page, LogFormat: "text"}, nil)
	srv := httptest.NewServer(a.statusMux())
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("done before run", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/done")
		require.NoError(t, err)
		defer resp.Body.Close()

		var view doneView
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		assert.Equal(t, a.RunID(), view.RunID)
		assert.Empty(t, view.Completed)
	})

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	t.Run("done after run", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/done")
		require.NoError(t, err)
		defer resp.Body.Close()

		var view doneView
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		assert.ElementsMatch(t, []string{"print", "attrs"}, view.Completed)
		assert.Len(t, view.Outcomes, 3)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		var body bytes.Buffer
		_, err = body.ReadFrom(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, body.String(), "initr_script_fetch_total")
	})
}
