package rpc

import (
	"encoding/json"
	"fmt"
)

// ArgString returns the string argument or def when absent.
func ArgString(args map[string]any, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// ArgBool returns the bool argument or def when absent.
func ArgBool(args map[string]any, key string, def bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// ArgInt returns the integer argument or def when absent. JSON numbers
// arrive as float64.
func ArgInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

// ArgStringSlice returns the array-of-string argument; nil when absent.
// Decoded JSON arrays arrive as []any; the dispatcher rewrites resolved
// document arguments as []string.
func ArgStringSlice(args map[string]any, key string) []string {
	switch raw := args[key].(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}
