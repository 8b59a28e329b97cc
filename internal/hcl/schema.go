package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of a manifest file.
type fileRoot struct {
	Settings     *settingsBlock     `hcl:"settings,block"`
	Dependencies []*dependencyBlock `hcl:"dependency,block"`
	Remain       hcl.Body           `hcl:",remain"`
}

type settingsBlock struct {
	BasePath           *string `hcl:"base_path,optional"`
	Dev                *bool   `hcl:"dev,optional"`
	DisableScriptCache *bool   `hcl:"disable_script_cache,optional"`
	Timeout            *string `hcl:"timeout,optional"`
}

// dependencyBlock is a labelled `dependency "<handle>"` block. Its body is
// decoded separately into dependencyBody so that `next` blocks can share it.
type dependencyBlock struct {
	Handle string   `hcl:"handle,label"`
	Body   hcl.Body `hcl:",remain"`
}

type dependencyBody struct {
	Name            *string         `hcl:"name,optional"`
	Selector        *string         `hcl:"selector,optional"`
	Src             hcl.Expression  `hcl:"src,optional"`
	Bundle          *string         `hcl:"bundle,optional"`
	Bundled         *bool           `hcl:"bundled,optional"`
	Type            *string         `hcl:"type,optional"`
	TypesBySelector *bool           `hcl:"types_by_selector,optional"`
	Defaults        hcl.Expression  `hcl:"defaults,optional"`
	Validate        *string         `hcl:"validate,optional"`
	Init            *string         `hcl:"init,optional"`
	Done            *string         `hcl:"done,optional"`
	Variants        []*variantBlock `hcl:"variant,block"`
	Next            *nextBlock      `hcl:"next,block"`
}

type variantBlock struct {
	Key        string         `hcl:"key,label"`
	BySelector *bool          `hcl:"by_selector,optional"`
	Config     hcl.Expression `hcl:"config,optional"`
	Init       *string        `hcl:"init,optional"`
}

// nextBlock is an unlabelled chained dependency carrying its handle as an
// attribute.
type nextBlock struct {
	Handle string   `hcl:"handle"`
	Body   hcl.Body `hcl:",remain"`
}
