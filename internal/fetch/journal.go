package fetch

import (
	"context"
	"sync"
)

// Script is a script the Journal saw executed.
type Script struct {
	URL  string
	Size int
}

// Journal is an Executor that only records what was executed.
type Journal struct {
	mu      sync.Mutex
	scripts []Script
}

// Execute implements Executor.
func (j *Journal) Execute(_ context.Context, url string, body []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.scripts = append(j.scripts, Script{URL: url, Size: len(body)})
	return nil
}

// Scripts returns the executed scripts in execution order.
func (j *Journal) Scripts() []Script {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Script(nil), j.scripts...)
}
