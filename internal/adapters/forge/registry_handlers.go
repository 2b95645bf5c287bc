package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/registry"
)

// launchEntry builds the registration entry that makes the host client
// spawn this adapter file.
func (s *Service) launchEntry(path string, env map[string]string) registry.Entry {
	command := s.runner.NodeBin
	if command == "" {
		command = "node"
	}
	if strings.EqualFold(filepath.Ext(path), ".ts") {
		command = s.runner.TSXBin
		if command == "" {
			command = "tsx"
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return registry.Entry{Command: command, Args: []string{path}, Env: env}
}

func (s *Service) handleRegister(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	exists, err := s.store.Exists(name)
	if err != nil {
		return adapter.Errorf("register adapter: %v", err), nil
	}
	if !exists {
		return adapter.Errorf("register adapter: %v: %s", ErrNotFound, sanitizedBase(name)), nil
	}
	path, err := s.store.Path(name)
	if err != nil {
		return adapter.Errorf("register adapter: %v", err), nil
	}

	key, err := s.reg.Upsert(storedName(path), s.launchEntry(path, adapter.StringMapArg(req, "env")))
	if err != nil {
		return adapter.Errorf("register adapter: %v", err), nil
	}
	return adapter.TextResult(struct {
		Name     string `json:"name"`
		Document string `json:"document"`
	}{key, s.reg.Path()}), nil
}

func (s *Service) handleUnregister(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	existed, err := s.reg.Remove(name)
	if err != nil {
		return adapter.Errorf("unregister adapter: %v", err), nil
	}
	if !existed {
		return adapter.Errorf("adapter %s is not registered", sanitizedBase(name)), nil
	}
	return adapter.TextResult(struct {
		Name         string `json:"name"`
		Unregistered bool   `json:"unregistered"`
	}{sanitizedBase(name), true}), nil
}

func (s *Service) handleExportRegistration(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := req.GetString("format", "json")
	switch format {
	case "json":
		doc, err := s.reg.Load()
		if err != nil {
			return adapter.Errorf("export registration: %v", err), nil
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return adapter.Errorf("export registration: %v", err), nil
		}
		return adapter.TextResult(string(data)), nil
	case "yaml":
		data, err := s.reg.ExportYAML()
		if err != nil {
			return adapter.Errorf("export registration: %v", err), nil
		}
		return adapter.TextResult(string(data)), nil
	default:
		return adapter.Errorf("unknown format %q: use json or yaml", format), nil
	}
}

func (s *Service) handleCatalogResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := s.catalog()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Service) handleSourceResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(req.Params.URI, "adapter://"), "/source")
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid adapter source URI %s", req.Params.URI)
	}
	content, err := s.store.Read(name)
	if err != nil {
		return nil, fmt.Errorf("read adapter source: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/javascript",
			Text:     content,
		},
	}, nil
}

func (s *Service) handleScaffoldPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	purpose := ""
	packages := ""
	if args := req.Params.Arguments; args != nil {
		purpose = args["purpose"]
		packages = args["packages"]
	}
	if purpose == "" {
		purpose = "a single-purpose integration"
	}

	text := fmt.Sprintf(`Write a Node MCP adapter for %s.

Requirements:
- ES module importing the SDK: @modelcontextprotocol/sdk/server/mcp.js and @modelcontextprotocol/sdk/server/stdio.js, with zod for input schemas.
- Every tool handler validates its input, performs one call against the external dependency, and returns the result as text. Wrap the call in try/catch and return { content: [{ type: "text", text: "Error: " + err.message }], isError: true } on failure; never let the process crash.
- Read secrets and endpoints from process.env; when a required variable is missing, return an error result naming it instead of throwing.
- Connect a StdioServerTransport at the end of the file; log to stderr only, stdout belongs to the transport.

Skeleton:

import { McpServer } from "@modelcontextprotocol/sdk/server/mcp.js";
import { StdioServerTransport } from "@modelcontextprotocol/sdk/server/stdio.js";
import { z } from "zod";

const server = new McpServer({ name: "my-adapter", version: "1.0.0" });

server.tool("tool_name", { param: z.string() }, async ({ param }) => {
  try {
    const result = await doWork(param);
    return { content: [{ type: "text", text: JSON.stringify(result) }] };
  } catch (err) {
    return { content: [{ type: "text", text: "Error: " + err.message }], isError: true };
  }
});

const transport = new StdioServerTransport();
await server.connect(transport);
`, purpose)

	if packages != "" {
		text += fmt.Sprintf("\nBuild on these npm packages: %s. After writing the file, scan_adapter_deps and install_adapter_deps resolve them.\n", packages)
	}

	return mcp.NewGetPromptResult("Node MCP adapter scaffold", []mcp.PromptMessage{
		{
			Role:    mcp.RoleUser,
			Content: mcp.TextContent{Type: "text", Text: text},
		},
	}), nil
}
