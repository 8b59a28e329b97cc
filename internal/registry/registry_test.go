package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
)

type testModule struct{}

func (testModule) Register(r *Registry) {
	r.RegisterPlugin("slider", func(context.Context, dom.Selection, dependency.Config) error { return nil })
	r.RegisterGlobal("tracker", func(context.Context, dependency.Config) error { return nil })
	r.RegisterModule("cart", struct{}{})
	r.RegisterValidator("Always", func(dom.Selection, *dependency.Descriptor) bool { return true })
}

func TestNew_RegistersModules(t *testing.T) {
	r := New(testModule{})

	_, ok := r.Plugin("slider")
	assert.True(t, ok)
	_, ok = r.Global("tracker")
	assert.True(t, ok)
	_, ok = r.Module("cart")
	assert.True(t, ok)
	_, ok = r.Validator("Always")
	assert.True(t, ok)
	_, ok = r.Plugin("missing")
	assert.False(t, ok)

	plugins, globals, modules := r.Names()
	assert.Equal(t, []string{"slider"}, plugins)
	assert.Equal(t, []string{"tracker"}, globals)
	assert.Equal(t, []string{"cart"}, modules)
}

func TestRegister_DuplicatePanics(t *testing.T) {
	r := New(testModule{})
	assert.PanicsWithValue(t, "element plugin with name 'slider' already registered", func() {
		r.RegisterPlugin("slider", nil)
	})
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.RegisterGlobal(string(rune('a'+i%26))+string(rune('A'+i/26)), func(context.Context, dependency.Config) error { return nil })
		}(i)
		go func() {
			defer wg.Done()
			r.Global("aA")
		}()
	}
	wg.Wait()
	_, globals, _ := r.Names()
	require.Len(t, globals, 50)
}
