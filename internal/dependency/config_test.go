package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	t.Parallel()
	base := Config{
		"speed":  3,
		"arrows": true,
		"theme":  map[string]any{"color": "red", "size": "s"},
	}
	override := Config{
		"speed": 5,
		"theme": map[string]any{"size": "xl"},
		"loop":  true,
	}

	got := Merge(base, override)

	assert.Equal(t, Config{
		"speed":  5,
		"arrows": true,
		"loop":   true,
		"theme":  map[string]any{"color": "red", "size": "xl"},
	}, got)
	assert.Equal(t, "s", base["theme"].(map[string]any)["size"], "base must not be modified")
}

func TestMerge_NestedConfigValues(t *testing.T) {
	t.Parallel()
	base := Config{"theme": Config{"color": "red", "inner": map[string]any{"a": 1}}}
	override := Config{"theme": Config{"inner": Config{"b": 2}}, "extra": []any{"x"}}

	got := Merge(base, override)

	assert.Equal(t, Config{
		"theme": map[string]any{"color": "red", "inner": map[string]any{"a": 1, "b": 2}},
		"extra": []any{"x"},
	}, got)
	assert.Equal(t, Config{"color": "red", "inner": map[string]any{"a": 1}}, base["theme"])
}

func TestMerge_ReplacesNonMapValues(t *testing.T) {
	t.Parallel()
	got := Merge(
		Config{"theme": map[string]any{"color": "red"}, "size": 3},
		Config{"theme": "dark", "size": map[string]any{"w": 2}},
	)

	assert.Equal(t, Config{"theme": "dark", "size": map[string]any{"w": 2}}, got)
}

func TestMerge_NilInputs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Config{}, Merge(nil, nil))
	assert.Equal(t, Config{"a": 1}, Merge(nil, Config{"a": 1}))
	assert.Equal(t, Config{"a": 1}, Merge(Config{"a": 1}, nil))
}

func TestConfigBool(t *testing.T) {
	t.Parallel()
	c := Config{"on": true, "off": false, "str": "true"}
	assert.True(t, c.Bool("on"))
	assert.False(t, c.Bool("off"))
	assert.False(t, c.Bool("str"))
	assert.False(t, c.Bool("missing"))
}
