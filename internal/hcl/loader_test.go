package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/initr/internal/config"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullManifest(t *testing.T) {
	// Arrange
	path := writeManifest(t, `
settings {
  base_path            = "/js/"
  dev                  = true
  disable_script_cache = true
  timeout              = "1500ms"
}

dependency "nav" {
  selector = ".nav"
  src      = ["!a.js", "b.js", "c.js"]
  bundle   = "nav.min.js"
  type     = "element-plugin"
  name     = "navigation"
  validate = "NonEmpty"
  done     = "OnDone"
  defaults = {
    speed = 3
    ratio = 0.5
    nav   = { dots = true }
    tags  = ["x", "y"]
  }

  variant "wide" {
    config = { speed = 5 }
    init   = "OnWide"
  }
  variant ".fancy" {
    by_selector = true
  }

  next {
    handle = "nav-extra"
    src    = "extra.js"
    init   = "OnExtra"
  }
}

dependency "analytics" {
  type    = "global-function"
  bundled = true
}
`)

	// Act
	m, err := NewLoader().Load(context.Background(), path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, config.Settings{BasePath: "/js/", Dev: true, DisableScriptCache: true, Timeout: 1500 * time.Millisecond}, m.Settings)
	require.Len(t, m.Dependencies, 2)

	nav := m.Dependencies[0]
	assert.Equal(t, "nav", nav.Handle)
	assert.Equal(t, "navigation", nav.Name)
	assert.Equal(t, ".nav", nav.Selector)
	assert.Equal(t, []string{"!a.js", "b.js", "c.js"}, nav.Src)
	assert.True(t, nav.SrcList)
	assert.Equal(t, "nav.min.js", nav.Bundle)
	assert.Equal(t, "element-plugin", nav.Type)
	assert.Equal(t, "NonEmpty", nav.Validate)
	assert.Equal(t, "OnDone", nav.Done)
	assert.Equal(t, map[string]any{
		"speed": 3,
		"ratio": 0.5,
		"nav":   map[string]any{"dots": true},
		"tags":  []any{"x", "y"},
	}, nav.Defaults)

	require.Len(t, nav.Variants, 2)
	assert.Equal(t, &config.VariantSpec{Key: "wide", Config: map[string]any{"speed": 5}, Init: "OnWide"}, nav.Variants[0])
	assert.Equal(t, &config.VariantSpec{Key: ".fancy", BySelector: true}, nav.Variants[1])

	require.NotNil(t, nav.Next)
	assert.Equal(t, "nav-extra", nav.Next.Handle)
	assert.Equal(t, []string{"extra.js"}, nav.Next.Src)
	assert.False(t, nav.Next.SrcList)
	assert.Equal(t, "OnExtra", nav.Next.Init)

	analytics := m.Dependencies[1]
	assert.Equal(t, "analytics", analytics.Handle)
	assert.True(t, analytics.Bundled)
	assert.Empty(t, analytics.Src)
	assert.Nil(t, analytics.Defaults)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]struct {
		content string
		want    string
	}{
		"syntax": {
			content: `dependency "x" {`,
			want:    "failed to parse HCL file",
		},
		"unknown attribute": {
			content: `dependency "x" { colour = "red" }`,
			want:    "Unsupported argument",
		},
		"bad timeout": {
			content: `settings { timeout = "soon" }`,
			want:    `invalid timeout "soon"`,
		},
		"src type": {
			content: `dependency "x" { src = { a = 1 } }`,
			want:    "expected a string or a list of strings",
		},
		"defaults type": {
			content: `dependency "x" { defaults = "fast" }`,
			want:    "expected an object",
		},
		"duplicate": {
			content: "dependency \"x\" {}\ndependency \"x\" {}\n",
			want:    `dependency "x" declared more than once`,
		},
		"bundle and bundled": {
			content: "dependency \"x\" {\n  bundle  = \"x.js\"\n  bundled = true\n}\n",
			want:    "mutually exclusive",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader().Load(context.Background(), writeManifest(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	assert.Error(t, err)
}
