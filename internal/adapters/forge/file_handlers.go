package forge

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
)

func (s *Service) handleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	source, err := req.RequireString("source")
	if err != nil {
		return adapter.Errorf("source parameter is required"), nil
	}
	overwrite := adapter.BoolArg(req, "overwrite", false)
	register := adapter.BoolArg(req, "register", false)

	path, err := s.store.Create(name, source, overwrite)
	if err != nil {
		if errors.Is(err, ErrExists) {
			return adapter.Errorf("%v; pass overwrite to replace it", err), nil
		}
		return adapter.Errorf("create adapter: %v", err), nil
	}
	s.log.Info("created adapter", "file", filepath.Base(path), "bytes", len(source))

	response := struct {
		Name       string `json:"name"`
		Path       string `json:"path"`
		Bytes      int    `json:"bytes"`
		Registered bool   `json:"registered"`
	}{Name: storedName(path), Path: path, Bytes: len(source)}

	if register {
		key, err := s.reg.Upsert(storedName(path), s.launchEntry(path, adapter.StringMapArg(req, "env")))
		if err != nil {
			return adapter.Errorf("adapter written to %s but registration failed: %v", path, err), nil
		}
		response.Name = key
		response.Registered = true
	}
	return adapter.TextResult(response), nil
}

func (s *Service) handleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	source, err := req.RequireString("source")
	if err != nil {
		return adapter.Errorf("source parameter is required"), nil
	}

	path, err := s.store.Update(name, source)
	if err != nil {
		return adapter.Errorf("update adapter: %v", err), nil
	}
	s.log.Info("updated adapter", "file", filepath.Base(path), "bytes", len(source))

	return adapter.TextResult(struct {
		Name  string `json:"name"`
		Path  string `json:"path"`
		Bytes int    `json:"bytes"`
	}{Name: storedName(path), Path: path, Bytes: len(source)}), nil
}

func (s *Service) handleReplaceLines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	start, err := adapter.RequireInt(req, "startLine")
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	end, err := adapter.RequireInt(req, "endLine")
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return adapter.Errorf("content parameter is required"), nil
	}

	current, err := s.store.Read(name)
	if err != nil {
		return adapter.Errorf("replace lines: %v", err), nil
	}
	edited, err := ReplaceLines(current, start, end, content)
	if err != nil {
		// Rejected before any write; the file is untouched.
		return adapter.Errorf("replace lines: %v", err), nil
	}
	path, err := s.store.Update(name, edited)
	if err != nil {
		return adapter.Errorf("replace lines: %v", err), nil
	}
	s.log.Info("replaced lines", "file", filepath.Base(path), "start", start, "end", end)

	return adapter.TextResult(struct {
		Name        string `json:"name"`
		StartLine   int    `json:"startLine"`
		EndLine     int    `json:"endLine"`
		LinesBefore int    `json:"lines_before"`
		LinesAfter  int    `json:"lines_after"`
	}{storedName(path), start, end, CountLines(current), CountLines(edited)}), nil
}

func (s *Service) handleInsertLines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	after, err := adapter.RequireInt(req, "afterLine")
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return adapter.Errorf("content parameter is required"), nil
	}

	current, err := s.store.Read(name)
	if err != nil {
		return adapter.Errorf("insert lines: %v", err), nil
	}
	edited, err := InsertLines(current, after, content)
	if err != nil {
		return adapter.Errorf("insert lines: %v", err), nil
	}
	path, err := s.store.Update(name, edited)
	if err != nil {
		return adapter.Errorf("insert lines: %v", err), nil
	}
	s.log.Info("inserted lines", "file", filepath.Base(path), "after", after, "count", CountLines(edited)-CountLines(current))

	return adapter.TextResult(struct {
		Name        string `json:"name"`
		AfterLine   int    `json:"afterLine"`
		LinesBefore int    `json:"lines_before"`
		LinesAfter  int    `json:"lines_after"`
	}{storedName(path), after, CountLines(current), CountLines(edited)}), nil
}

func (s *Service) handleRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	content, err := s.store.Read(name)
	if err != nil {
		return adapter.Errorf("read adapter: %v", err), nil
	}
	return adapter.TextResult(NumberLines(content)), nil
}

func (s *Service) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.catalog()
	if err != nil {
		return adapter.Errorf("list adapters: %v", err), nil
	}
	return adapter.TextResult(struct {
		Adapters []catalogEntry `json:"adapters"`
		Total    int            `json:"total"`
	}{entries, len(entries)}), nil
}

func (s *Service) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	unregister := adapter.BoolArg(req, "unregister", true)

	if err := s.store.Delete(name); err != nil {
		return adapter.Errorf("delete adapter: %v", err), nil
	}
	response := struct {
		Name         string `json:"name"`
		Deleted      bool   `json:"deleted"`
		Unregistered bool   `json:"unregistered"`
	}{Name: sanitizedBase(name), Deleted: true}

	if unregister {
		existed, err := s.reg.Remove(name)
		if err != nil {
			return adapter.Errorf("adapter deleted but unregister failed: %v", err), nil
		}
		response.Unregistered = existed
	}
	s.log.Info("deleted adapter", "name", response.Name, "unregistered", response.Unregistered)
	return adapter.TextResult(response), nil
}

// catalogEntry is one row of the adapter catalog: a stored file plus its
// registration status.
type catalogEntry struct {
	FileInfo
	Registered bool `json:"registered"`
}

func (s *Service) catalog() ([]catalogEntry, error) {
	files, err := s.store.List()
	if err != nil {
		return nil, err
	}
	doc, err := s.reg.Load()
	if err != nil {
		return nil, err
	}
	entries := make([]catalogEntry, 0, len(files))
	for _, f := range files {
		_, registered := doc.Servers[f.Name]
		entries = append(entries, catalogEntry{FileInfo: f, Registered: registered})
	}
	return entries, nil
}

// storedName maps a stored file path back to the adapter's registry name.
func storedName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sanitizedBase(name string) string {
	file, err := FileName(name)
	if err != nil {
		return name
	}
	return strings.TrimSuffix(file, filepath.Ext(file))
}
