package dependency

import "dario.cat/mergo"

// Merge returns a new Config holding base overlaid with override. Nested
// maps are merged recursively; any other override value replaces the base
// value. Neither argument is modified.
func Merge(base, override Config) Config {
	out := cloneConfig(base)
	if len(override) == 0 {
		return out
	}
	// mergo writes into nested destination maps, so both sides are copies.
	if err := mergo.Merge(&out, cloneConfig(override), mergo.WithOverride); err != nil {
		panic(err) // unreachable: both arguments are Config
	}
	return out
}

// Bool reports whether key holds boolean true.
func (c Config) Bool(key string) bool {
	b, _ := c[key].(bool)
	return b
}

func asMap(v any) (Config, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Config:
		return m, true
	}
	return nil, false
}

// cloneConfig copies c, normalizing nested maps to map[string]any.
func cloneConfig(c Config) Config {
	out := make(Config, len(c))
	for k, v := range c {
		if m, ok := asMap(v); ok {
			out[k] = map[string]any(cloneConfig(m))
			continue
		}
		out[k] = v
	}
	return out
}
