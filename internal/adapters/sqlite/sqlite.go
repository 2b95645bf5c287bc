// Package sqlite adapts a SQLite database file as an MCP data-store
// with split read and write tools. The pure-Go driver keeps the adapter
// free of cgo, so it runs wherever the catalog does.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mcpforge/adapters/internal/sqlguard"
	"github.com/mcpforge/adapters/internal/sqlrows"
)

type Client struct {
	db *sql.DB
}

func Open(path string) (*Client, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases from losing their
	// schema between pooled connections and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

type QueryResult struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated,omitempty"`
}

// ReadQuery runs a single SELECT or WITH statement.
func (c *Client) ReadQuery(ctx context.Context, query string, maxRows int) (*QueryResult, error) {
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

type WriteResult struct {
	RowsAffected int64 `json:"rows_affected"`
	LastInsertID int64 `json:"last_insert_id,omitempty"`
}

// WriteQuery runs a mutating statement and reports what it touched.
func (c *Client) WriteQuery(ctx context.Context, query string) (*WriteResult, error) {
	if err := sqlguard.EnsureWrite(query); err != nil {
		return nil, err
	}
	res, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("statement failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	lastID, _ := res.LastInsertId()
	return &WriteResult{RowsAffected: affected, LastInsertID: lastID}, nil
}

// ListTables returns user table names, skipping SQLite's internals.
func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	Default    any    `json:"default"`
	PrimaryKey bool   `json:"primary_key"`
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DescribeTable reads PRAGMA table_info. PRAGMA arguments cannot be
// bound, so the table name is validated before interpolation.
func (c *Client) DescribeTable(ctx context.Context, table string) ([]ColumnInfo, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to describe table: %w", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var (
			cid     int
			col     ColumnInfo
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		col.NotNull = notNull != 0
		col.PrimaryKey = pk != 0
		if dflt.Valid {
			col.Default = dflt.String
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	return columns, nil
}

// SchemaDump returns every CREATE statement in the database.
func (c *Client) SchemaDump(ctx context.Context) (string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT sql FROM sqlite_master WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return "", fmt.Errorf("failed to read schema: %w", err)
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", err
		}
		stmts = append(stmts, strings.TrimRight(stmt, ";")+";")
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return strings.Join(stmts, "\n\n"), nil
}
