package registry

import "fmt"

// Parameter accessors shared by the action handlers. Resolved parameter maps
// come from JSON and template resolution, so values may arrive as string,
// float64, int, or nested []any / map[string]any.

// StringParam returns the parameter as a string, or def when absent or nil.
// Non-string scalars are formatted, matching how placeholder values flow into
// text fields.
func StringParam(params map[string]any, key, def string) string {
	value, ok := params[key]
	if !ok || value == nil {
		return def
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}

// FloatParam returns the parameter as a float64, or def when absent or not
// numeric.
func FloatParam(params map[string]any, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// SliceParam returns the parameter as a list, or nil when absent or not a
// list.
func SliceParam(params map[string]any, key string) []any {
	if v, ok := params[key].([]any); ok {
		return v
	}

	return nil
}
