// Package postgres adapts a PostgreSQL database as a read-only MCP
// data-store: pass-through queries plus schema inspection. Nothing here
// owns tables; every result is rendered from whatever the connected
// database holds.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	pgdriver "github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/mcpforge/adapters/internal/sqlguard"
	"github.com/mcpforge/adapters/internal/sqlrows"
)

type Config struct {
	DSN   string
	Debug bool
}

type Client struct {
	db *bun.DB
}

func NewClient(cfg Config) *Client {
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))
	sqldb := sql.OpenDB(connector)
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Client{db: db}
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// QueryResult carries one read-only query's rows in JSON-friendly form.
type QueryResult struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated,omitempty"`
}

// Query runs one read-only statement and returns up to maxRows rows.
// The statement is guarded before it reaches the database.
func (c *Client) Query(ctx context.Context, query string, maxRows int) (*QueryResult, error) {
	if err := sqlguard.EnsureReadOnly(query); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, collected, truncated, err := sqlrows.Collect(rows, maxRows)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Columns: columns, Rows: collected, RowCount: len(collected), Truncated: truncated}, nil
}

// TableInfo is one information_schema.tables row.
type TableInfo struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

func (c *Client) ListTables(ctx context.Context, schema string) ([]TableInfo, error) {
	if schema == "" {
		schema = "public"
	}
	var tables []TableInfo
	err := c.db.NewRaw(
		`SELECT table_schema AS schema, table_name AS name, table_type AS type
		 FROM information_schema.tables
		 WHERE table_schema = ?
		 ORDER BY table_name`, schema,
	).Scan(ctx, &tables)
	if err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", schema, err)
	}
	return tables, nil
}

// ColumnInfo is one information_schema.columns row.
type ColumnInfo struct {
	Name     string  `json:"name"`
	DataType string  `json:"data_type"`
	Nullable string  `json:"nullable"`
	Default  *string `json:"default,omitempty"`
	Position int     `json:"position"`
}

func (c *Client) DescribeTable(ctx context.Context, schema, table string) ([]ColumnInfo, error) {
	if schema == "" {
		schema = "public"
	}
	var columns []ColumnInfo
	err := c.db.NewRaw(
		`SELECT column_name AS name, data_type, is_nullable AS nullable,
		        column_default AS "default", ordinal_position AS position
		 FROM information_schema.columns
		 WHERE table_schema = ? AND table_name = ?
		 ORDER BY ordinal_position`, schema, table,
	).Scan(ctx, &columns)
	if err != nil {
		return nil, fmt.Errorf("describe %s.%s: %w", schema, table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s does not exist", schema, table)
	}
	return columns, nil
}
