package attrs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
	"github.com/vk/initr/internal/registry"
)

func TestValidators(t *testing.T) {
	withIDs := dom.Selection{dom.El("div", map[string]string{"id": "a"}), dom.El("div", map[string]string{"id": "b"})}
	mixed := dom.Selection{dom.El("div", map[string]string{"id": "a"}), dom.El("div", nil)}

	assert.True(t, NonEmpty(withIDs, nil))
	assert.False(t, NonEmpty(nil, nil))
	assert.True(t, AllHaveID(withIDs, nil))
	assert.False(t, AllHaveID(mixed, nil))
}

func TestInit_IndexesByKey(t *testing.T) {
	m := &Module{}
	r := registry.New(m)
	mod, ok := r.Module("attrs")
	require.True(t, ok)
	initializer, ok := mod.(registry.Initializer)
	require.True(t, ok)

	els := dom.Selection{dom.El("nav", map[string]string{"id": "main", "class": "nav", "data-type": "top"})}
	require.NoError(t, initializer.Init(context.Background(), els, &dependency.Descriptor{Handle: "nav", Name: "menu"}))

	snaps, ok := m.Lookup("menu")
	require.True(t, ok)
	assert.Equal(t, []Snapshot{{Tag: "nav", ID: "main", Class: "nav", DataType: "top"}}, snaps)
	_, ok = m.Lookup("nav")
	assert.False(t, ok)
}
