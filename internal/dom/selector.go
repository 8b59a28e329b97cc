package dom

import (
	"errors"
	"fmt"

	"github.com/andybalholm/cascadia"
)

// ErrInvalidSelector is wrapped by every selector parse error.
var ErrInvalidSelector = errors.New("invalid selector")

// Selector is a compiled CSS selector list.
type Selector struct {
	source string
	group  cascadia.SelectorGroup
}

// Compile parses a selector list.
func Compile(source string) (*Selector, error) {
	group, err := cascadia.ParseGroup(source)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, source, err)
	}
	return &Selector{source: source, group: group}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string) *Selector {
	sel, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return sel
}

// String returns the selector source.
func (s *Selector) String() string {
	return s.source
}

// Match reports whether e matches any selector in the list.
func (s *Selector) Match(e Element) bool {
	return s.group.Match(e.HTML())
}

// Matcher exposes the compiled selector for querying html.Node trees.
func (s *Selector) Matcher() cascadia.Matcher {
	return s.group
}
