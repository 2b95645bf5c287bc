package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/viper"

	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

func openTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func seedItems(t *testing.T, client *Client) {
	t.Helper()
	ctx := context.Background()
	stmts := []string{
		`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL, qty INTEGER DEFAULT 1)`,
		`INSERT INTO items (name, qty) VALUES ('bolt', 10), ('nut', 20), ('washer', 30)`,
	}
	for _, stmt := range stmts {
		if _, err := client.WriteQuery(ctx, stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	client := openTestClient(t)
	ctx := context.Background()
	seedItems(t, client)

	wr, err := client.WriteQuery(ctx, `INSERT INTO items (name) VALUES ('screw')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if wr.RowsAffected != 1 {
		t.Errorf("RowsAffected = %d, want 1", wr.RowsAffected)
	}
	if wr.LastInsertID != 4 {
		t.Errorf("LastInsertID = %d, want 4", wr.LastInsertID)
	}

	rr, err := client.ReadQuery(ctx, `SELECT name, qty FROM items ORDER BY id`, 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rr.RowCount != 4 {
		t.Fatalf("RowCount = %d, want 4", rr.RowCount)
	}
	if got := rr.Rows[0]["name"]; got != "bolt" {
		t.Errorf("first row name = %v, want bolt", got)
	}
	// DEFAULT 1 applied by the engine, not by this adapter.
	if got := rr.Rows[3]["qty"]; got != int64(1) {
		t.Errorf("defaulted qty = %v (%T), want 1", got, got)
	}
}

func TestReadQueryRejectsMutation(t *testing.T) {
	client := openTestClient(t)
	seedItems(t, client)

	_, err := client.ReadQuery(context.Background(), `DELETE FROM items`, 0)
	if err == nil {
		t.Fatal("ReadQuery(DELETE) = nil, want error")
	}
	if !strings.Contains(err.Error(), "only SELECT and WITH") {
		t.Fatalf("unexpected error: %v", err)
	}

	rr, err := client.ReadQuery(context.Background(), `SELECT count(*) AS n FROM items`, 0)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if rr.Rows[0]["n"] != int64(3) {
		t.Fatalf("rejected statement still mutated the table: %v", rr.Rows[0]["n"])
	}
}

func TestWriteQueryRejectsSelect(t *testing.T) {
	client := openTestClient(t)
	seedItems(t, client)

	_, err := client.WriteQuery(context.Background(), `SELECT * FROM items`)
	if err == nil {
		t.Fatal("WriteQuery(SELECT) = nil, want error")
	}
	if !strings.Contains(err.Error(), "read_query") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadQueryHonorsMaxRows(t *testing.T) {
	client := openTestClient(t)
	seedItems(t, client)

	rr, err := client.ReadQuery(context.Background(), `SELECT * FROM items ORDER BY id`, 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rr.RowCount != 2 || !rr.Truncated {
		t.Fatalf("RowCount = %d, Truncated = %v, want 2/true", rr.RowCount, rr.Truncated)
	}
}

func TestListTables(t *testing.T) {
	client := openTestClient(t)
	ctx := context.Background()

	tables, err := client.ListTables(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("empty database lists tables: %v", tables)
	}

	seedItems(t, client)
	if _, err := client.WriteQuery(ctx, `CREATE TABLE audit (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	tables, err = client.ListTables(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"audit", "items"}
	if len(tables) != len(want) {
		t.Fatalf("tables = %v, want %v", tables, want)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Fatalf("tables = %v, want %v", tables, want)
		}
	}
}

func TestDescribeTable(t *testing.T) {
	client := openTestClient(t)
	seedItems(t, client)
	ctx := context.Background()

	columns, err := client.DescribeTable(ctx, "items")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if len(columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(columns))
	}
	if !columns[0].PrimaryKey {
		t.Errorf("id should be flagged primary key: %+v", columns[0])
	}
	if !columns[1].NotNull {
		t.Errorf("name should be flagged not null: %+v", columns[1])
	}
	if columns[2].Default != "1" {
		t.Errorf("qty default = %v, want \"1\"", columns[2].Default)
	}

	if _, err := client.DescribeTable(ctx, "ghosts"); err == nil {
		t.Fatal("describe of missing table = nil, want error")
	}
	if _, err := client.DescribeTable(ctx, "items; DROP TABLE items"); err == nil {
		t.Fatal("describe with injected name = nil, want error")
	}
}

func TestSchemaDump(t *testing.T) {
	client := openTestClient(t)
	seedItems(t, client)

	dump, err := client.SchemaDump(context.Background())
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(dump, "CREATE TABLE items") {
		t.Fatalf("dump missing table definition: %q", dump)
	}
	if !strings.HasSuffix(strings.TrimSpace(dump), ";") {
		t.Fatalf("dump statements should end with semicolons: %q", dump)
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatalf("result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text
}

func TestServiceOpensConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.db")
	viper.Set(config.KeySQLitePath, path)
	t.Cleanup(func() { viper.Set(config.KeySQLitePath, "") })

	svc := NewService(logging.New(logr.Discard()))
	t.Cleanup(func() { svc.Close() })
	ctx := context.Background()

	res, err := svc.handleWriteQuery(ctx, callRequest(map[string]any{
		"sql": `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`,
	}))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if res.IsError {
		t.Fatalf("write failed: %s", resultText(t, res))
	}

	res, err = svc.handleListTables(ctx, callRequest(nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.IsError {
		t.Fatalf("list failed: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "notes") {
		t.Fatalf("list does not mention created table: %s", resultText(t, res))
	}
}

func TestServiceWithoutPathIsConfigError(t *testing.T) {
	viper.Set(config.KeySQLitePath, "")

	svc := NewService(logging.New(logr.Discard()))
	res, err := svc.handleReadQuery(context.Background(), callRequest(map[string]any{"sql": "SELECT 1"}))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !res.IsError {
		t.Fatal("missing SQLITE_PATH should produce a configuration error")
	}
	if !strings.Contains(resultText(t, res), "SQLITE_PATH") {
		t.Fatalf("error should name the missing variable: %s", resultText(t, res))
	}
}
