package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeFetcher is an in-memory script fetcher with controllable latency,
// failures and gates. It records when every fetch started and finished.
type FakeFetcher struct {
	mu       sync.Mutex
	latency  time.Duration
	delays   map[string]time.Duration
	failures map[string]error
	gates    map[string]chan struct{}
	calls    map[string]int
	records  []FetchRecord
	onLoad   func(url string)
}

// NewFakeFetcher creates a fetcher where every script takes latency to load.
func NewFakeFetcher(latency time.Duration) *FakeFetcher {
	return &FakeFetcher{
		latency:  latency,
		delays:   make(map[string]time.Duration),
		failures: make(map[string]error),
		gates:    make(map[string]chan struct{}),
		calls:    make(map[string]int),
	}
}

// SetDelay overrides the latency for a single URL.
func (f *FakeFetcher) SetDelay(url string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[url] = d
}

// Fail makes every fetch of url return err.
func (f *FakeFetcher) Fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[url] = err
}

// Hold blocks fetches of url until the returned release function is called.
func (f *FakeFetcher) Hold(url string) (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[url] = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// OnLoad registers a hook run after each successful fetch, playing the part
// of the script's side effects.
func (f *FakeFetcher) OnLoad(fn func(url string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onLoad = fn
}

// FetchScript implements scriptcache.Fetcher.
func (f *FakeFetcher) FetchScript(ctx context.Context, url string) error {
	start := time.Now()
	f.mu.Lock()
	f.calls[url]++
	delay, ok := f.delays[url]
	if !ok {
		delay = f.latency
	}
	gate := f.gates[url]
	failure := f.failures[url]
	onLoad := f.onLoad
	f.mu.Unlock()

	err := wait(ctx, gate, delay)
	if err == nil {
		err = failure
	}
	if err == nil && onLoad != nil {
		onLoad(url)
	}

	f.mu.Lock()
	f.records = append(f.records, FetchRecord{URL: url, Start: start, End: time.Now(), Err: err})
	f.mu.Unlock()
	return err
}

func wait(ctx context.Context, gate chan struct{}, delay time.Duration) error {
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Calls returns how many times url was fetched.
func (f *FakeFetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// TotalCalls returns the number of fetches across all URLs.
func (f *FakeFetcher) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Records returns a copy of the completed fetch log in completion order.
func (f *FakeFetcher) Records() []FetchRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FetchRecord(nil), f.records...)
}

// Record returns the log entry for url.
func (f *FakeFetcher) Record(url string) (FetchRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.URL == url {
			return r, true
		}
	}
	return FetchRecord{}, false
}
