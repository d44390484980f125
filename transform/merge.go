package transform

// Merge deep-merges src onto dst and returns the combined configuration.
// Nested maps are merged recursively, conflicting scalar keys take the
// value from src, and sibling keys in dst are preserved. Neither input is
// mutated; successive applies accumulate by reassigning the result.
func Merge(dst, src Config) Config {
	out := make(Config, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		existing, ok := out[k]
		if !ok {
			out[k] = v
			continue
		}
		dstMap, dstOk := asMap(existing)
		srcMap, srcOk := asMap(v)
		if dstOk && srcOk {
			out[k] = map[string]any(Merge(dstMap, srcMap))
			continue
		}
		out[k] = v
	}
	return out
}

func asMap(v any) (Config, bool) {
	switch m := v.(type) {
	case Config:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}
