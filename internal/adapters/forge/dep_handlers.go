package forge

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
)

func (s *Service) handleScanDeps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	source, err := s.store.Read(name)
	if err != nil {
		return adapter.Errorf("scan dependencies: %v", err), nil
	}
	packages := ScanImports(source)
	return adapter.TextResult(struct {
		Name     string   `json:"name"`
		Packages []string `json:"packages"`
		Total    int      `json:"total"`
	}{sanitizedBase(name), packages, len(packages)}), nil
}

func (s *Service) handleInstallDeps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	packages := adapter.StringSliceArg(req, "packages")
	name := req.GetString("name", "")
	devTypes := adapter.BoolArg(req, "dev_types", true)

	if len(packages) == 0 {
		if name == "" {
			return adapter.Errorf("give either packages to install or an adapter name to scan"), nil
		}
		source, err := s.store.Read(name)
		if err != nil {
			return adapter.Errorf("install dependencies: %v", err), nil
		}
		packages = ScanImports(source)
		if len(packages) == 0 {
			return adapter.TextResult("no external packages found in " + sanitizedBase(name)), nil
		}
	}

	report, err := s.installer.Install(ctx, packages, devTypes)
	if err != nil {
		return adapter.Errorf("install dependencies: %v", err), nil
	}
	s.log.Info("installed packages", "manager", report.Manager, "count", len(report.Packages))
	return adapter.TextResult(report), nil
}

func (s *Service) handleTryRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	timeout := time.Duration(adapter.IntArg(req, "timeoutSeconds", int(s.runTimeout/time.Second))) * time.Second
	env := adapter.StringMapArg(req, "env")

	exists, err := s.store.Exists(name)
	if err != nil {
		return adapter.Errorf("try adapter: %v", err), nil
	}
	if !exists {
		return adapter.Errorf("try adapter: %v: %s", ErrNotFound, sanitizedBase(name)), nil
	}
	path, err := s.store.Path(name)
	if err != nil {
		return adapter.Errorf("try adapter: %v", err), nil
	}

	report, err := s.runner.TryRun(ctx, path, env, timeout)
	if err != nil {
		return adapter.Errorf("try adapter: %v", err), nil
	}
	s.log.Info("trial run finished", "run_id", report.RunID, "passed", report.Passed, "timed_out", report.TimedOut)
	return adapter.TextResult(report), nil
}
