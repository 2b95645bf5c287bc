package bigquery

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

// Service constructs the BigQuery client on first use so a missing
// project id or broken credentials surface per-request.
type Service struct {
	mu     sync.Mutex
	client *Client
	log    logging.Logger
}

func NewService(log logging.Logger) *Service {
	return &Service{log: log.WithName("bigquery")}
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

func (s *Service) getClient(ctx context.Context) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	project := config.BigQueryProject()
	if project == "" {
		return nil, fmt.Errorf("BIGQUERY_PROJECT_ID is not set")
	}
	client, err := NewClient(ctx, project)
	if err != nil {
		return nil, err
	}
	s.client = client
	s.log.Info("created client", "project", project)
	return s.client, nil
}

func (s *Service) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql, err := req.RequireString("sql")
	if err != nil {
		return adapter.Errorf("sql parameter is required"), nil
	}
	maxRows := adapter.IntArg(req, "max_rows", defaultMaxRows)

	client, err := s.getClient(ctx)
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	result, err := client.Query(ctx, sql, maxRows)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(result), nil
}

func (s *Service) handleListDatasets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	datasets, err := client.ListDatasets(ctx)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	if datasets == nil {
		datasets = []string{}
	}
	return adapter.TextResult(struct {
		Datasets []string `json:"datasets"`
		Total    int      `json:"total"`
	}{datasets, len(datasets)}), nil
}

func (s *Service) handleListTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataset, err := req.RequireString("dataset")
	if err != nil {
		return adapter.Errorf("dataset parameter is required"), nil
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	tables, err := client.ListTables(ctx, dataset)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	if tables == nil {
		tables = []string{}
	}
	return adapter.TextResult(struct {
		Dataset string   `json:"dataset"`
		Tables  []string `json:"tables"`
		Total   int      `json:"total"`
	}{dataset, tables, len(tables)}), nil
}

func (s *Service) handleDescribeTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataset, err := req.RequireString("dataset")
	if err != nil {
		return adapter.Errorf("dataset parameter is required"), nil
	}
	table, err := req.RequireString("table")
	if err != nil {
		return adapter.Errorf("table parameter is required"), nil
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	info, err := client.DescribeTable(ctx, dataset, table)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(info), nil
}

// New builds the bigquery adapter.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "bigquery",
		Version:     "1.0.0",
		Description: "Query Google BigQuery and inspect datasets, tables, and schemas.",
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("query",
		mcp.WithDescription("Run a BigQuery SQL statement and return rows as JSON."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("The SQL statement to run")),
		mcp.WithNumber("max_rows", mcp.Description("Row cap for the result (default: 100)")),
	), adapter.RequireEnv(svc.handleQuery, config.KeyBigQueryProjectID))

	srv.Handle(mcp.NewTool("list_datasets",
		mcp.WithDescription("List datasets in the configured project."),
	), adapter.RequireEnv(svc.handleListDatasets, config.KeyBigQueryProjectID))

	srv.Handle(mcp.NewTool("list_tables",
		mcp.WithDescription("List tables in a dataset."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id")),
	), adapter.RequireEnv(svc.handleListTables, config.KeyBigQueryProjectID))

	srv.Handle(mcp.NewTool("describe_table",
		mcp.WithDescription("Describe a table: schema, row count, size, and timestamps."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id")),
		mcp.WithString("table", mcp.Required(), mcp.Description("Table id")),
	), adapter.RequireEnv(svc.handleDescribeTable, config.KeyBigQueryProjectID))

	return srv
}
