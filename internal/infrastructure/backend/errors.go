package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// errorMessage extracts the most specific human-readable message from an
// error body: "message", then "error", then "detail", then a flattened
// "field: msg, msg; field2: msg" summary of a keyed error map.
func errorMessage(body []byte, fallback string) string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	switch v := payload.(type) {
	case map[string]any:
		if len(v) == 0 {
			return fallback
		}
		for _, key := range []string{"message", "error", "detail"} {
			if msg := text(v[key]); msg != "" {
				return msg
			}
		}
		if msg := flattenFieldErrors(v); msg != "" {
			return msg
		}
	case []any:
		if msg := text(v); msg != "" {
			return msg
		}
	case string:
		if v != "" {
			return v
		}
	}
	return fallback
}

// text renders strings and lists of strings; anything else is empty.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func flattenFieldErrors(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+render(fields[k]))
	}
	return strings.Join(parts, "; ")
}

func render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			items = append(items, render(item))
		}
		return strings.Join(items, ", ")
	case map[string]any:
		b, _ := json.Marshal(t)
		return string(b)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
