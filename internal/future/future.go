// Package future provides a single-assignment completion signal used to chain
// asynchronous script loads.
package future

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Future is a completion signal that settles exactly once, either
// successfully or with an error. The zero value is not usable; construct one
// with New, Resolved, Failed or Go.
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

// New returns an unsettled future and the function that settles it. Only the
// first call to settle has any effect.
func New() (*Future, func(error)) {
	f := &Future{done: make(chan struct{})}
	return f, f.settle
}

func (f *Future) settle(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Resolved returns a future that has already succeeded.
func Resolved() *Future {
	f, settle := New()
	settle(nil)
	return f
}

// Failed returns a future that has already failed with err.
func Failed(err error) *Future {
	f, settle := New()
	settle(err)
	return f
}

// Go runs fn on its own goroutine and returns a future settled with its
// result.
func Go(fn func() error) *Future {
	f, settle := New()
	go func() { settle(fn()) }()
	return f
}

// Done returns a channel closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the settled error. It is nil until the future settles.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Settled reports whether the future has completed.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future settles or ctx is done. Abandoning the wait
// does not cancel the underlying work.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// All returns a future that succeeds once every member has succeeded and
// fails with the first member error observed, without waiting for the rest.
func All(futures ...*Future) *Future {
	switch len(futures) {
	case 0:
		return Resolved()
	case 1:
		return futures[0]
	}
	return Go(func() error {
		g, gctx := errgroup.WithContext(context.Background())
		for _, member := range futures {
			g.Go(func() error { return member.Wait(gctx) })
		}
		return g.Wait()
	})
}

// Then returns a future that starts next only after f succeeds. A failure of
// f is passed through and next is never called.
func (f *Future) Then(next func() *Future) *Future {
	return Go(func() error {
		if err := f.Wait(context.Background()); err != nil {
			return err
		}
		return next().Wait(context.Background())
	})
}
