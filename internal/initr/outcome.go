package initr

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInitializer is reported for dependencies whose type matches no
	// strategy and that carry no init callback.
	ErrNoInitializer = errors.New("no usable initializer")
	// ErrNoDocument is reported for dependencies with a selector when the
	// coordinator has no page to query.
	ErrNoDocument = errors.New("no document to query")
	// ErrNotCompleted is returned by Run for handles without a completion.
	ErrNotCompleted = errors.New("dependency has not completed")
)

// Status is the result of one dependency run.
type Status string

const (
	// StatusDone marks a dependency whose initializer ran without error.
	StatusDone Status = "done"
	// StatusNoMatch marks a dependency whose selector matched nothing.
	StatusNoMatch Status = "no-match"
	// StatusInvalid marks a dependency rejected by its validate callback.
	StatusInvalid Status = "invalid"
	// StatusLoadFailed marks a dependency whose scripts could not be loaded.
	StatusLoadFailed Status = "load-failed"
	// StatusMisconfigured marks a dependency that cannot be initialized as
	// declared, for example a missing capability or handle.
	StatusMisconfigured Status = "misconfigured"
	// StatusInitFailed marks a dependency whose initializer returned an error.
	StatusInitFailed Status = "init-failed"
	// StatusSubscriberFailed marks a completed dependency whose done event
	// subscriber returned an error.
	StatusSubscriberFailed Status = "subscriber-failed"
)

// Skipped reports whether the dependency never reached completion.
func (s Status) Skipped() bool {
	return s != StatusDone && s != StatusSubscriberFailed
}

// Outcome records how a dependency run ended.
type Outcome struct {
	Handle string
	Status Status
	Err    error
}

func (o Outcome) String() string {
	if o.Err == nil {
		return fmt.Sprintf("%s: %s", o.Handle, o.Status)
	}
	return fmt.Sprintf("%s: %s (%v)", o.Handle, o.Status, o.Err)
}
