package document

// Resolve walks node one key at a time. The boolean result is false as soon as
// an intermediate node is not a mapping or a key is missing; a present key
// holding null resolves to (nil, true).
func Resolve(node any, path Path) (any, bool) {
	ref := node
	for _, key := range path {
		var m map[string]any
		switch typed := ref.(type) {
		case Tree:
			m = typed
		case map[string]any:
			m = typed
		default:
			return nil, false
		}
		next, ok := m[key]
		if !ok {
			return nil, false
		}
		ref = next
	}
	return ref, true
}

// Mapping returns node as a mapping, if it is one.
func Mapping(node any) (map[string]any, bool) {
	switch typed := node.(type) {
	case Tree:
		return typed, true
	case map[string]any:
		return typed, true
	default:
		return nil, false
	}
}
