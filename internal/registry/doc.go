// Package registry provides the central "glue" between manifests and Go code.
//
// The Registry stores the toolkit capabilities that initializer strategies
// dispatch to (element plugins, global functions and application modules)
// together with the named callbacks that manifests refer to by string
// (e.g. validate = "NonEmpty" or init = "OnInitNav").
//
// Modules populate a registry at startup through Module.Register. Scripts
// loaded at runtime may add capabilities later, so every method is safe for
// concurrent use.
package registry
