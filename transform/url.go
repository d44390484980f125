package transform

import (
	"fmt"
	"net/url"
	"strings"
)

// segment order is fixed so the same configuration always renders the
// same URL (the provider caches per-URL).
var segmentOrder = []string{"restore", "fillBackground", "remove", "recolor", "removeBackground"}

// URL builds the provider render URL for an asset: size first, then one
// path segment per transformation in the configuration, then the asset id.
func URL(baseURL, publicID string, width, height int, cfg Config) string {
	var segments []string

	if width > 0 && height > 0 {
		segments = append(segments, fmt.Sprintf("w_%d,h_%d", width, height))
	}

	for _, key := range segmentOrder {
		value, ok := cfg[key]
		if !ok {
			continue
		}
		if seg := segmentFor(key, value); seg != "" {
			segments = append(segments, seg)
		}
	}

	parts := append([]string{strings.TrimRight(baseURL, "/")}, segments...)
	parts = append(parts, publicID)
	return strings.Join(parts, "/")
}

func segmentFor(key string, value any) string {
	switch key {
	case "restore":
		if truthy(value) {
			return "e_gen_restore"
		}
	case "fillBackground":
		if truthy(value) {
			return "b_gen_fill"
		}
	case "removeBackground":
		if truthy(value) {
			return "e_background_removal"
		}
	case "remove":
		params, ok := asMap(value)
		if !ok {
			return ""
		}
		opts := []string{"prompt_" + url.PathEscape(str(params["prompt"]))}
		if truthy(params["removeShadow"]) {
			opts = append(opts, "remove-shadow_true")
		}
		if truthy(params["multiple"]) {
			opts = append(opts, "multiple_true")
		}
		return "e_gen_remove:" + strings.Join(opts, ";")
	case "recolor":
		params, ok := asMap(value)
		if !ok {
			return ""
		}
		opts := []string{
			"prompt_" + url.PathEscape(str(params["prompt"])),
			"to-color_" + url.PathEscape(str(params["to"])),
		}
		if truthy(params["multiple"]) {
			opts = append(opts, "multiple_true")
		}
		return "e_gen_recolor:" + strings.Join(opts, ";")
	}
	return ""
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
