package adapter

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/config"
)

// RequireEnv guards a handler behind required configuration keys. When any
// key resolves empty the wrapped handler is not invoked and the caller gets
// a configuration error naming the missing environment variables. Missing
// credentials are a per-request condition, never a reason to exit.
func RequireEnv(h HandlerFunc, keys ...string) HandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var missing []string
		for _, key := range keys {
			if config.Lookup(key) == "" {
				missing = append(missing, strings.ToUpper(key))
			}
		}
		if len(missing) > 0 {
			return Errorf("configuration error: %s not set", strings.Join(missing, ", ")), nil
		}
		return h(ctx, req)
	}
}
