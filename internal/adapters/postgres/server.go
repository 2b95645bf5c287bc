package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

const defaultMaxRows = 100

// Service lazily opens the database on first use so a missing
// POSTGRES_URL surfaces as a per-request configuration error instead of
// killing the process at startup.
type Service struct {
	mu     sync.Mutex
	client *Client
	log    logging.Logger
}

func NewService(log logging.Logger) *Service {
	return &Service{log: log.WithName("postgres")}
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
	dsn := config.PostgresURL()
	if dsn == "" {
		return nil, fmt.Errorf("POSTGRES_URL is not set")
	}
	s.client = NewClient(Config{DSN: dsn, Debug: config.PostgresDebug()})
	s.log.Info("opened database connection")
	return s.client, nil
}

func (s *Service) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("sql")
	if err != nil {
		return adapter.Errorf("sql parameter is required"), nil
	}
	maxRows := adapter.IntArg(req, "max_rows", defaultMaxRows)

	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	result, err := client.Query(ctx, query, maxRows)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(result), nil
}

func (s *Service) handleListTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	schema := req.GetString("schema", "public")

	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	tables, err := client.ListTables(ctx, schema)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Schema string      `json:"schema"`
		Tables []TableInfo `json:"tables"`
		Total  int         `json:"total"`
	}{schema, tables, len(tables)}), nil
}

func (s *Service) handleDescribeTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := req.RequireString("table")
	if err != nil {
		return adapter.Errorf("table parameter is required"), nil
	}
	schema := req.GetString("schema", "public")

	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	columns, err := client.DescribeTable(ctx, schema, table)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Schema  string       `json:"schema"`
		Table   string       `json:"table"`
		Columns []ColumnInfo `json:"columns"`
	}{schema, table, columns}), nil
}

func (s *Service) handleSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rest := strings.TrimPrefix(req.Params.URI, "postgres://tables/")
	table := strings.TrimSuffix(rest, "/schema")
	if table == "" || strings.Contains(table, "/") {
		return nil, fmt.Errorf("invalid table schema URI %s", req.Params.URI)
	}

	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	columns, err := client.DescribeTable(ctx, "public", table)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(columns, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// New builds the postgres adapter.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "postgres",
		Version:     "1.0.0",
		Description: "Read-only access to a PostgreSQL database: pass-through SELECT queries and schema inspection.",
		Resources:   true,
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("query",
		mcp.WithDescription("Run a read-only SQL query. Only single SELECT or WITH statements are accepted; rows come back as JSON."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("The SELECT or WITH statement to run")),
		mcp.WithNumber("max_rows", mcp.Description("Row cap for the result (default: 100)")),
	), adapter.RequireEnv(svc.handleQuery, config.KeyPostgresURL))

	srv.Handle(mcp.NewTool("list_tables",
		mcp.WithDescription("List tables in a schema."),
		mcp.WithString("schema", mcp.Description("Schema name (default: public)")),
	), adapter.RequireEnv(svc.handleListTables, config.KeyPostgresURL))

	srv.Handle(mcp.NewTool("describe_table",
		mcp.WithDescription("Describe a table's columns, types, nullability, and defaults from information_schema."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Table name")),
		mcp.WithString("schema", mcp.Description("Schema name (default: public)")),
	), adapter.RequireEnv(svc.handleDescribeTable, config.KeyPostgresURL))

	srv.HandleResourceTemplate(mcp.NewResourceTemplate(
		"postgres://tables/{table}/schema",
		"Table schema",
		mcp.WithTemplateDescription("Column definitions of one table in the public schema"),
		mcp.WithTemplateMIMEType("application/json"),
	), svc.handleSchemaResource)

	return srv
}
