// Package dom defines the element-query capability the loader needs from a
// page: a Document answers selector queries with a Selection, and a
// Selection can be narrowed by selector or attribute value.
//
// Selectors are CSS selector lists compiled by cascadia and matched against
// golang.org/x/net/html nodes. Every Element exposes its html.Node.
//
// Tree is an in-memory Document used by tests and by callers that build
// pages programmatically; its nodes form a detached html.Node tree. An
// HTML-backed Document lives in dom/htmldoc.
package dom
