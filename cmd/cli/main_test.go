package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/initr/internal/cli"
)

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--help"})

	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_UnknownFlag(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_StartupErrorHasExitCode(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		dependency "nav" {
			selector = ".nav"
		// Missing closing brace here
	`
	dir := t.TempDir()
	manifest := filepath.Join(dir, "initr.hcl")
	require.NoError(t, os.WriteFile(manifest, []byte(invalidHCL), 0600))

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"plan", "--manifest", manifest})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, exitErr.Message, "startup failed")
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, &bytes.Buffer{}, []string{"version"}))
	require.Equal(t, "initr dev\n", out.String())
}
