package adapter

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// IntArg reads an integer argument that JSON decoding delivers as float64,
// falling back to def when absent or non-positive.
func IntArg(req mcp.CallToolRequest, key string, def int) int {
	switch v := req.GetArguments()[key].(type) {
	case float64:
		if int(v) > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	}
	return def
}

// RequireInt reads a mandatory integer argument.
func RequireInt(req mcp.CallToolRequest, key string) (int, error) {
	switch v := req.GetArguments()[key].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

// BoolArg reads a boolean argument with a default.
func BoolArg(req mcp.CallToolRequest, key string, def bool) bool {
	if v, ok := req.GetArguments()[key].(bool); ok {
		return v
	}
	return def
}

// FloatArg reads a float argument with a default.
func FloatArg(req mcp.CallToolRequest, key string, def float64) float64 {
	if v, ok := req.GetArguments()[key].(float64); ok {
		return v
	}
	return def
}

// StringSliceArg reads a string-array argument; non-string elements are
// skipped.
func StringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// StringMapArg reads an object argument as a string map; non-string values
// are skipped.
func StringMapArg(req mcp.CallToolRequest, key string) map[string]string {
	raw, ok := req.GetArguments()[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
