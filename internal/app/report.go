package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vk/initr/internal/fetch"
	"github.com/vk/initr/internal/initr"
)

// Report summarizes a run.
type Report struct {
	RunID    string
	Outcomes []initr.Outcome
	Scripts  []fetch.Script
}

// Completed returns the number of dependency runs that completed.
func (r *Report) Completed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Status.Skipped() {
			n++
		}
	}
	return n
}

// Write prints one line per dependency outcome followed by the executed
// scripts.
func (r *Report) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, o := range r.Outcomes {
		reason := ""
		if o.Err != nil {
			reason = o.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Handle, o.Status, reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d/%d dependencies completed, %d scripts executed\n", r.Completed(), len(r.Outcomes), len(r.Scripts))
	return err
}
