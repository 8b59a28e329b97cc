// Package fetch retrieves scripts over HTTP(S) or from a local directory and
// hands their contents to an Executor.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vk/initr/internal/ctxlog"
)

// ErrFetch is wrapped by every retrieval failure.
var ErrFetch = errors.New("script retrieval failed")

var remoteURL = regexp.MustCompile(`^https?://`)

// Executor runs a retrieved script.
type Executor interface {
	Execute(ctx context.Context, url string, body []byte) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, url string, body []byte) error

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, url string, body []byte) error {
	return f(ctx, url, body)
}

// Fetcher implements scriptcache.Fetcher. Remote URLs are requested with the
// HTTP client, everything else is read from below Root.
type Fetcher struct {
	Client *http.Client
	Root   string
	Exec   Executor
}

// New creates a fetcher. A nil client means http.DefaultClient.
func New(client *http.Client, root string, exec Executor) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{Client: client, Root: root, Exec: exec}
}

// FetchScript retrieves url and executes it.
func (f *Fetcher) FetchScript(ctx context.Context, url string) error {
	logger := ctxlog.FromContext(ctx).With("url", url)

	var (
		body []byte
		err  error
	)
	if remoteURL.MatchString(url) {
		body, err = f.get(ctx, url)
	} else {
		body, err = f.read(url)
	}
	if err != nil {
		logger.Debug("Script retrieval failed.", "error", err)
		return err
	}
	logger.Debug("Script retrieved.", "bytes", len(body))

	if f.Exec == nil {
		return nil
	}
	if err := f.Exec.Execute(ctx, url, body); err != nil {
		return fmt.Errorf("execute %s: %w", url, err)
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetch, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: %s", ErrFetch, url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrFetch, err)
	}
	return body, nil
}

func (f *Fetcher) read(url string) ([]byte, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(url, "/"))
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %s escapes %s", ErrFetch, url, f.Root)
	}
	body, err := os.ReadFile(filepath.Join(f.Root, rel))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return body, nil
}
