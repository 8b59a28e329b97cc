// Package config defines the format-agnostic manifest model: page settings
// and the ordered list of dependencies, along with the Loader interface that
// format-specific packages implement.
//
// The `config.Model` is the single source of truth for building the
// descriptors the coordinator runs. Concrete loaders for HCL, YAML and TOML
// live in separate packages.
package config
