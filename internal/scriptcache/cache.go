// Package scriptcache memoizes script loads by resolved URL so that each
// distinct script is fetched and executed at most once for the lifetime of a
// Cache.
package scriptcache

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/future"
)

// absoluteURL matches identifiers that are already network addresses and must
// not be prefixed with the base path.
var absoluteURL = regexp.MustCompile(`^https?://`)

// Fetcher retrieves a script and executes it. FetchScript returns once the
// script has run, or with the reason it could not.
type Fetcher interface {
	FetchScript(ctx context.Context, url string) error
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) error

// FetchScript calls f.
func (f FetcherFunc) FetchScript(ctx context.Context, url string) error {
	return f(ctx, url)
}

// Options controls URL resolution and caching.
type Options struct {
	// BasePath is prepended to every identifier that is not an absolute
	// http(s) URL.
	BasePath string
	// Disabled forces a fresh fetch for every request.
	Disabled bool
	// Timeout bounds each individual fetch. Zero means no bound.
	Timeout time.Duration
}

// Cache holds one future per resolved script URL.
type Cache struct {
	fetcher Fetcher
	opts    Options
	metrics *Metrics

	mu      sync.Mutex
	entries map[string]*future.Future
}

// New creates a cache in front of fetcher. metrics may be nil.
func New(fetcher Fetcher, opts Options, metrics *Metrics) *Cache {
	return &Cache{
		fetcher: fetcher,
		opts:    opts,
		metrics: metrics,
		entries: make(map[string]*future.Future),
	}
}

// Resolve turns a script identifier into the URL used as cache key.
func (c *Cache) Resolve(id string) string {
	if absoluteURL.MatchString(id) {
		return id
	}
	return c.opts.BasePath + id
}

// Fetch returns the future for id, starting the fetch only if no entry exists
// for its resolved URL or caching is disabled. The fetch is detached from
// ctx cancellation; only the configured timeout can cut it short.
func (c *Cache) Fetch(ctx context.Context, id string) *future.Future {
	url := c.Resolve(id)
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[url]; ok && !c.opts.Disabled {
		logger.Debug("Script cache hit.", "url", url)
		c.metrics.observeHit()
		return existing
	}

	fetchCtx := context.WithoutCancel(ctx)
	f := future.Go(func() error {
		return c.fetch(fetchCtx, url)
	})
	c.entries[url] = f
	return f
}

func (c *Cache) fetch(ctx context.Context, url string) error {
	logger := ctxlog.FromContext(ctx)
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	logger.Debug("Fetching script.", "url", url)
	start := time.Now()
	// The timeout applies even to fetchers that ignore ctx.
	result := make(chan error, 1)
	go func() {
		result <- c.fetcher.FetchScript(ctx, url)
	}()
	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	}
	c.metrics.observeFetch(time.Since(start), err)
	if err != nil {
		logger.Debug("Script fetch failed.", "url", url, "error", err)
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	return nil
}

// FetchAll fetches every id concurrently. The returned future succeeds when
// all fetches succeed and fails as soon as any one fails.
func (c *Cache) FetchAll(ctx context.Context, ids []string) *future.Future {
	ctxlog.FromContext(ctx).Debug("Fetching script group.", "scripts", ids)
	futures := make([]*future.Future, len(ids))
	for i, id := range ids {
		futures[i] = c.Fetch(ctx, id)
	}
	return future.All(futures...)
}

// Len reports the number of cached URLs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
