package hcl

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// toGo converts a cty value into plain Go data: objects and maps become
// map[string]any, lists, tuples and sets become []any, whole numbers become
// int and other numbers float64.
func toGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Bool:
		return v.True(), nil
	case t == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == 0 {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case t.IsObjectType() || t.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			gv, err := toGo(ev)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.AsString(), err)
			}
			out[k.AsString()] = gv
		}
		return out, nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := toGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t.FriendlyName())
}

// toConfig converts an object or map value into a configuration map.
func toConfig(v cty.Value) (map[string]any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if t := v.Type(); !t.IsObjectType() && !t.IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", t.FriendlyName())
	}
	out, err := toGo(v)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

// toSources converts a string or a list of strings into script identifiers.
// list reports whether v was a list.
func toSources(v cty.Value) (ids []string, list bool, err error) {
	if v.IsNull() {
		return nil, false, nil
	}
	if v.Type() == cty.String {
		return []string{v.AsString()}, false, nil
	}
	converted, err := convert.Convert(v, cty.List(cty.String))
	if err != nil {
		return nil, false, fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	if err := gocty.FromCtyValue(converted, &ids); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}
