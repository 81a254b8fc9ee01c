// Package template resolves {{dotted.path}} placeholders in action
// parameters against the run context.
//
// Only full-string placeholders are supported: a value that is exactly
// "{{path.to.value}}" is replaced by the value at that path, anything else
// passes through unchanged. Partial interpolation ("Hello {{name}}!") is a
// deliberate non-feature, not an oversight: resolved values keep their
// original type instead of being flattened to strings.
package template

import (
	"strings"

	"github.com/oliveagle/jsonpath"
)

// Lookup walks data along the dotted path. Missing keys or walks into
// non-mapping values resolve to nil, never an error.
func Lookup(data map[string]any, path string) any {
	value, err := jsonpath.JsonPathLookup(data, "$."+path)
	if err != nil {
		return nil
	}

	return value
}

// Resolve returns a copy of params with every full-string placeholder
// replaced by its context value. Nested maps and lists are resolved
// recursively, applying the same full-string rule per leaf. params is never
// mutated.
func Resolve(params map[string]any, context map[string]any) map[string]any {
	resolved := make(map[string]any, len(params))
	for key, value := range params {
		resolved[key] = resolveValue(value, context)
	}

	return resolved
}

func resolveValue(value any, context map[string]any) any {
	switch v := value.(type) {
	case string:
		if path, ok := placeholderPath(v); ok {
			return Lookup(context, path)
		}

		return v
	case map[string]any:
		return Resolve(v, context)
	case []any:
		resolved := make([]any, len(v))
		for i, item := range v {
			resolved[i] = resolveValue(item, context)
		}

		return resolved
	default:
		return v
	}
}

// placeholderPath extracts the dotted path from a full-string placeholder.
func placeholderPath(s string) (string, bool) {
	if !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") || len(s) < 4 {
		return "", false
	}

	path := strings.TrimSpace(s[2 : len(s)-2])
	if path == "" || strings.Contains(path, "{") || strings.Contains(path, "}") {
		return "", false
	}

	return path, true
}
