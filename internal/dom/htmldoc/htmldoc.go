// Package htmldoc implements dom.Document over a parsed HTML page.
package htmldoc

import (
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/cascadia"
	"github.com/vk/initr/internal/dom"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
}

// Parse reads an HTML page from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{root: root}, nil
}

// Load parses the HTML file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Query implements dom.Document. Elements are returned in document order.
func (d *Document) Query(selector string) (dom.Selection, error) {
	sel, err := dom.Compile(selector)
	if err != nil {
		return nil, err
	}
	var out dom.Selection
	for _, n := range cascadia.QueryAll(d.root, sel.Matcher()) {
		out = append(out, element{n})
	}
	return out, nil
}

// element wraps an element node. It is a comparable value, so two wrappers
// of the same node are equal.
type element struct {
	n *html.Node
}

func (e element) Tag() string {
	return e.n.Data
}

func (e element) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e element) Parent() dom.Element {
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return element{p}
}

func (e element) HTML() *html.Node {
	return e.n
}
