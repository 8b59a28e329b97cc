package dom

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is an in-memory element backed by a detached html.Node.
type Node struct {
	n        *html.Node
	parent   *Node
	children []*Node
}

// El builds a node and adopts children.
func El(name string, attrs map[string]string, children ...*Node) *Node {
	name = strings.ToLower(name)
	n := &Node{n: &html.Node{Type: html.ElementNode, Data: name, DataAtom: atom.Lookup([]byte(name))}}
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		n.n.Attr = append(n.n.Attr, html.Attribute{Key: k, Val: attrs[k]})
	}
	for _, c := range children {
		n.Append(c)
	}
	return n
}

// Append adds child as the last child of n. child must not have a parent.
func (n *Node) Append(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
	n.n.AppendChild(child.n)
}

// Tag implements Element.
func (n *Node) Tag() string {
	return n.n.Data
}

// Attr implements Element.
func (n *Node) Attr(name string) (string, bool) {
	return attr(n.n, name)
}

// Parent implements Element.
func (n *Node) Parent() Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// HTML implements Element.
func (n *Node) HTML() *html.Node {
	return n.n
}

// Tree is a Document over in-memory nodes.
type Tree struct {
	Roots []*Node
}

// NewTree returns a document with the given top-level nodes.
func NewTree(roots ...*Node) *Tree {
	return &Tree{Roots: roots}
}

// Query returns every node matching selector in document order.
func (t *Tree) Query(selector string) (Selection, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	var out Selection
	var walk func(n *Node)
	walk = func(n *Node) {
		if sel.Match(n) {
			out = append(out, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	for _, r := range t.Roots {
		walk(r)
	}
	return out, nil
}
