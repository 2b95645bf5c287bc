// Package bigquery adapts Google BigQuery as a read-mostly MCP
// data-store: SQL pass-through plus dataset and table inspection.
// Credentials come from Application Default Credentials; the adapter
// only needs a project id.
package bigquery

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	bq "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

type Client struct {
	bq *bq.Client
}

func NewClient(ctx context.Context, projectID string) (*Client, error) {
	client, err := bq.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	return &Client{bq: client}, nil
}

func (c *Client) Close() error {
	return c.bq.Close()
}

type QueryResult struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated,omitempty"`
}

// Query runs SQL and collects up to maxRows rows. BigQuery values carry
// driver-specific types (civil dates, big.Rat numerics, nested records),
// so every cell is normalized into something JSON can carry.
func (c *Client) Query(ctx context.Context, sql string, maxRows int) (*QueryResult, error) {
	it, err := c.bq.Query(sql).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	result := &QueryResult{Rows: []map[string]any{}}
	for {
		var row map[string]bq.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading results: %w", err)
		}
		if maxRows > 0 && len(result.Rows) >= maxRows {
			result.Truncated = true
			break
		}
		result.Rows = append(result.Rows, normalizeRow(row))
	}
	result.Columns = columnNames(it.Schema)
	result.RowCount = len(result.Rows)
	return result, nil
}

func (c *Client) ListDatasets(ctx context.Context) ([]string, error) {
	it := c.bq.Datasets(ctx)
	var ids []string
	for {
		ds, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list datasets: %w", err)
		}
		ids = append(ids, ds.DatasetID)
	}
	return ids, nil
}

func (c *Client) ListTables(ctx context.Context, dataset string) ([]string, error) {
	it := c.bq.Dataset(dataset).Tables(ctx)
	var ids []string
	for {
		table, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list tables in %s: %w", dataset, err)
		}
		ids = append(ids, table.TableID)
	}
	return ids, nil
}

type ColumnInfo struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Mode        string       `json:"mode"`
	Description string       `json:"description,omitempty"`
	Fields      []ColumnInfo `json:"fields,omitempty"`
}

type TableInfo struct {
	Dataset     string       `json:"dataset"`
	Table       string       `json:"table"`
	Type        string       `json:"type"`
	Description string       `json:"description,omitempty"`
	NumRows     uint64       `json:"num_rows"`
	NumBytes    int64        `json:"num_bytes"`
	Created     string       `json:"created"`
	Modified    string       `json:"modified"`
	Columns     []ColumnInfo `json:"columns"`
}

func (c *Client) DescribeTable(ctx context.Context, dataset, table string) (*TableInfo, error) {
	meta, err := c.bq.Dataset(dataset).Table(table).Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s.%s: %w", dataset, table, err)
	}
	return &TableInfo{
		Dataset:     dataset,
		Table:       table,
		Type:        string(meta.Type),
		Description: meta.Description,
		NumRows:     meta.NumRows,
		NumBytes:    meta.NumBytes,
		Created:     meta.CreationTime.Format(time.RFC3339),
		Modified:    meta.LastModifiedTime.Format(time.RFC3339),
		Columns:     schemaColumns(meta.Schema),
	}, nil
}

func columnNames(schema bq.Schema) []string {
	names := make([]string, 0, len(schema))
	for _, field := range schema {
		names = append(names, field.Name)
	}
	return names
}

func schemaColumns(schema bq.Schema) []ColumnInfo {
	columns := make([]ColumnInfo, 0, len(schema))
	for _, field := range schema {
		columns = append(columns, ColumnInfo{
			Name:        field.Name,
			Type:        string(field.Type),
			Mode:        fieldMode(field),
			Description: field.Description,
			Fields:      schemaColumns(field.Schema),
		})
	}
	return columns
}

func fieldMode(field *bq.FieldSchema) string {
	switch {
	case field.Repeated:
		return "REPEATED"
	case field.Required:
		return "REQUIRED"
	default:
		return "NULLABLE"
	}
}

func normalizeRow(row map[string]bq.Value) map[string]any {
	out := make(map[string]any, len(row))
	for key, value := range row {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value bq.Value) any {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case civil.Date:
		return v.String()
	case civil.Time:
		return v.String()
	case civil.DateTime:
		return v.String()
	case *big.Rat:
		// NUMERIC carries nine decimal digits of scale.
		return v.FloatString(9)
	case []bq.Value:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = normalizeValue(item)
		}
		return items
	case map[string]bq.Value:
		return normalizeRow(v)
	default:
		return v
	}
}
