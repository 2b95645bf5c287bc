package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// TextResult wraps v in a plain-text tool result. Strings pass through
// verbatim; everything else is rendered as indented JSON.
func TextResult(v any) *mcp.CallToolResult {
	if s, ok := v.(string); ok {
		return mcp.NewToolResultText(s)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal response: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// Errorf builds an error-flagged tool result. Used for validation,
// configuration, and external-dependency failures alike; the request that
// triggered the error is the only thing it terminates.
func Errorf(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}
