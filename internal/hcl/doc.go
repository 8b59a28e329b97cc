// Package hcl provides the HCL implementation of the config.Loader
// interface. It is responsible for file parsing, HCL-to-model translation and
// converting cty values of `defaults` and `config` attributes into Go data.
package hcl
