package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchScript_FromDisk(t *testing.T) {
	// Arrange
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "a.js"), []byte("console.log(1)"), 0o600))
	journal := &Journal{}
	f := New(nil, root, journal)

	// Act
	err := f.FetchScript(context.Background(), "/js/a.js")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []Script{{URL: "/js/a.js", Size: 14}}, journal.Scripts())
}

func TestFetchScript_MissingFile(t *testing.T) {
	journal := &Journal{}
	err := New(nil, t.TempDir(), journal).FetchScript(context.Background(), "nope.js")

	assert.ErrorIs(t, err, ErrFetch)
	assert.Empty(t, journal.Scripts())
}

func TestFetchScript_RejectsEscapingPaths(t *testing.T) {
	err := New(nil, t.TempDir(), nil).FetchScript(context.Background(), "../../etc/passwd")
	require.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "escapes")
}

func TestFetchScript_RejectsEscapingPathsFromWorkingDirectory(t *testing.T) {
	// Arrange
	parent := t.TempDir()
	site := filepath.Join(parent, "site")
	require.NoError(t, os.MkdirAll(filepath.Join(site, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.js"), []byte("secret"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(site, "js", "a.js"), []byte("a"), 0o600))
	t.Chdir(site)
	journal := &Journal{}
	f := New(nil, ".", journal)

	// Act
	escapeErr := f.FetchScript(context.Background(), "../secret.js")
	localErr := f.FetchScript(context.Background(), "js/a.js")

	// Assert
	require.ErrorIs(t, escapeErr, ErrFetch)
	assert.Contains(t, escapeErr.Error(), "escapes")
	require.NoError(t, localErr)
	assert.Equal(t, []Script{{URL: "js/a.js", Size: 1}}, journal.Scripts())
}

func TestFetchScript_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.js" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()
	journal := &Journal{}
	f := New(srv.Client(), "", journal)

	require.NoError(t, f.FetchScript(context.Background(), srv.URL+"/a.js"))
	err := f.FetchScript(context.Background(), srv.URL+"/missing.js")

	require.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, []Script{{URL: srv.URL + "/a.js", Size: 2}}, journal.Scripts())
}

func TestFetchScript_ExecutorError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.js"), nil, 0o600))
	boom := errors.New("syntax error")
	f := New(nil, root, ExecutorFunc(func(context.Context, string, []byte) error { return boom }))

	err := f.FetchScript(context.Background(), "a.js")

	assert.ErrorIs(t, err, boom)
}
