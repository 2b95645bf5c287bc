package sqlite

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

const defaultMaxRows = 100

// Service opens the database on first use so an unusable SQLITE_PATH is
// a per-request error, not a startup crash.
type Service struct {
	mu     sync.Mutex
	client *Client
	log    logging.Logger
}

func NewService(log logging.Logger) *Service {
	return &Service{log: log.WithName("sqlite")}
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *Service) getClient() (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	path := config.SQLitePath()
	if path == "" {
		return nil, fmt.Errorf("SQLITE_PATH is not set")
	}
	client, err := Open(path)
	if err != nil {
		return nil, err
	}
	s.client = client
	s.log.Info("opened database", "path", path)
	return s.client, nil
}

func (s *Service) handleReadQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("sql")
	if err != nil {
		return adapter.Errorf("sql parameter is required"), nil
	}
	maxRows := adapter.IntArg(req, "max_rows", defaultMaxRows)

	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	result, err := client.ReadQuery(ctx, query, maxRows)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(result), nil
}

func (s *Service) handleWriteQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("sql")
	if err != nil {
		return adapter.Errorf("sql parameter is required"), nil
	}
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	result, err := client.WriteQuery(ctx, query)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(result), nil
}

func (s *Service) handleListTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	tables, err := client.ListTables(ctx)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	if tables == nil {
		tables = []string{}
	}
	return adapter.TextResult(struct {
		Tables []string `json:"tables"`
		Total  int      `json:"total"`
	}{tables, len(tables)}), nil
}

func (s *Service) handleDescribeTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := req.RequireString("table")
	if err != nil {
		return adapter.Errorf("table parameter is required"), nil
	}
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	columns, err := client.DescribeTable(ctx, table)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Table   string       `json:"table"`
		Columns []ColumnInfo `json:"columns"`
	}{table, columns}), nil
}

func (s *Service) handleSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	dump, err := client.SchemaDump(ctx)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "text/plain", Text: dump},
	}, nil
}

// New builds the sqlite adapter.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "sqlite",
		Version:     "1.0.0",
		Description: "SQLite database access with separate read and write tools plus schema inspection.",
		Resources:   true,
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("read_query",
		mcp.WithDescription("Run a SELECT or WITH statement and return rows as JSON."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("The SELECT statement to run")),
		mcp.WithNumber("max_rows", mcp.Description("Row cap for the result (default: 100)")),
	), svc.handleReadQuery)

	srv.Handle(mcp.NewTool("write_query",
		mcp.WithDescription("Run an INSERT, UPDATE, DELETE, or DDL statement and report rows affected."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("The mutating statement to run")),
	), svc.handleWriteQuery)

	srv.Handle(mcp.NewTool("list_tables",
		mcp.WithDescription("List user tables in the database."),
	), svc.handleListTables)

	srv.Handle(mcp.NewTool("describe_table",
		mcp.WithDescription("Describe a table's columns via PRAGMA table_info."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Table name")),
	), svc.handleDescribeTable)

	srv.HandleResource(mcp.NewResource(
		"sqlite://schema",
		"Database schema",
		mcp.WithResourceDescription("Every CREATE statement in the database"),
		mcp.WithMIMEType("text/plain"),
	), svc.handleSchemaResource)

	return srv
}
