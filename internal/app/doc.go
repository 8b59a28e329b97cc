// Package app contains the core application logic. It wires a manifest, a
// page and the built-in modules into a coordinator run, decoupled from any
// specific entrypoint like a CLI or server.
package app
