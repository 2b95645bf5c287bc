// Package adapter carries the shape every adapter in this repository
// follows: a stdio MCP server exposing a fixed set of tools, optional
// read-only resources, and optional prompts. Transport framing is the
// mcp-go library's responsibility; adapters only register handlers and
// serve.
package adapter

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mcpforge/adapters/internal/logging"
)

// HandlerFunc is the signature every tool handler implements. A handler
// reports failures through error-flagged results; a returned error is
// reserved for faults the transport should surface.
type HandlerFunc = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ResourceHandlerFunc serves read-only resource contents.
type ResourceHandlerFunc = func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)

// PromptHandlerFunc serves prompt requests.
type PromptHandlerFunc = func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error)

type Options struct {
	Name        string
	Version     string
	Description string
	Resources   bool
	Prompts     bool
	Logger      logging.Logger
}

// Server wraps an MCP server together with the adapter's logger.
type Server struct {
	name string
	mcp  *server.MCPServer
	log  logging.Logger
}

func New(opts Options) *Server {
	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	}
	if opts.Resources {
		serverOpts = append(serverOpts, server.WithResourceCapabilities(false, true))
	}
	if opts.Prompts {
		serverOpts = append(serverOpts, server.WithPromptCapabilities(true))
	}
	if opts.Description != "" {
		serverOpts = append(serverOpts, server.WithInstructions(opts.Description))
	}

	version := opts.Version
	if version == "" {
		version = "1.0.0"
	}

	return &Server{
		name: opts.Name,
		mcp:  server.NewMCPServer(opts.Name, version, serverOpts...),
		log:  opts.Logger.WithName(opts.Name),
	}
}

// Handle registers a tool with its handler.
func (s *Server) Handle(tool mcp.Tool, h HandlerFunc) {
	s.mcp.AddTool(tool, h)
}

// HandleResource registers a static read-only resource.
func (s *Server) HandleResource(res mcp.Resource, h ResourceHandlerFunc) {
	s.mcp.AddResource(res, h)
}

// HandleResourceTemplate registers a URI-templated read-only resource.
func (s *Server) HandleResourceTemplate(tpl mcp.ResourceTemplate, h ResourceHandlerFunc) {
	s.mcp.AddResourceTemplate(tpl, h)
}

// HandlePrompt registers a prompt.
func (s *Server) HandlePrompt(p mcp.Prompt, h PromptHandlerFunc) {
	s.mcp.AddPrompt(p, h)
}

// Log exposes the adapter-scoped logger.
func (s *Server) Log() logging.Logger {
	return s.log
}

// MCP exposes the underlying server for callers that need it directly.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks serving the adapter over stdin/stdout until the host
// process closes the transport.
func (s *Server) ServeStdio() error {
	s.log.Info("serving over stdio")
	return server.ServeStdio(s.mcp)
}
