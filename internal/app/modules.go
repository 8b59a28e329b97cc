package app

import (
	"io"

	"github.com/vk/initr/internal/registry"
	"github.com/vk/initr/modules/attrs"
	"github.com/vk/initr/modules/print"
)

// coreModules is the definitive list of all modules that are compiled into
// the initr binary.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&print.Module{Out: outW},
		&attrs.Module{},
	}
}
