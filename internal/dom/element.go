package dom

import "golang.org/x/net/html"

// Element is a single page element. Implementations must be comparable so
// that Selections can be diffed and de-duplicated.
type Element interface {
	// Tag returns the lower-case element name.
	Tag() string
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
	// Parent returns the enclosing element, or nil at the root.
	Parent() Element
	// HTML returns the node selectors are matched against.
	HTML() *html.Node
}

// Document answers selector queries against a page.
type Document interface {
	Query(selector string) (Selection, error)
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
