package dom

// Selection is an ordered set of elements.
type Selection []Element

// Len returns the number of elements.
func (s Selection) Len() int {
	return len(s)
}

// Filter keeps the elements matching sel.
func (s Selection) Filter(sel *Selector) Selection {
	var out Selection
	for _, e := range s {
		if sel.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// FilterSelector compiles source and keeps the matching elements.
func (s Selection) FilterSelector(source string) (Selection, error) {
	sel, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return s.Filter(sel), nil
}

// FilterAttr keeps the elements whose attribute name equals value.
func (s Selection) FilterAttr(name, value string) Selection {
	var out Selection
	for _, e := range s {
		if v, ok := e.Attr(name); ok && v == value {
			out = append(out, e)
		}
	}
	return out
}

// Not returns the elements of s that are absent from other.
func (s Selection) Not(other Selection) Selection {
	exclude := make(map[Element]struct{}, len(other))
	for _, e := range other {
		exclude[e] = struct{}{}
	}
	var out Selection
	for _, e := range s {
		if _, ok := exclude[e]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// Merge concatenates selections, dropping duplicates and keeping first
// occurrence order.
func Merge(selections ...Selection) Selection {
	seen := make(map[Element]struct{})
	var out Selection
	for _, s := range selections {
		for _, e := range s {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
