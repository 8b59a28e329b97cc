package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/initr/internal/pipeline"
)

// PlanLine is the load plan of one dependency.
type PlanLine struct {
	Handle string
	Depth  int // 0 for manifest dependencies, n for the n-th chained one
	Plan   pipeline.Plan
}

// Plan computes the load plan of every dependency without fetching
// anything.
func (a *App) Plan() ([]PlanLine, error) {
	deps, err := a.model.Descriptors(a.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependencies: %w", err)
	}
	p := pipeline.New(nil, a.settings().Dev)

	var lines []PlanLine
	for _, d := range deps {
		depth := 0
		for cur := d; cur != nil; cur = cur.Next {
			lines = append(lines, PlanLine{Handle: cur.Handle, Depth: depth, Plan: p.PlanFor(cur)})
			depth++
		}
	}
	return lines, nil
}

// WritePlan prints plan lines, indenting chained dependencies.
func WritePlan(w io.Writer, lines []PlanLine) error {
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", strings.Repeat("  ", l.Depth), l.Handle, l.Plan); err != nil {
			return err
		}
	}
	return nil
}
