package sqlrows

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT, payload BLOB)`,
		`INSERT INTO items (name, payload) VALUES ('first', x'68690a'), ('second', NULL), ('third', NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

func TestCollect(t *testing.T) {
	db := openTestDB(t)
	rows, err := db.Query(`SELECT id, name, payload FROM items ORDER BY id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	columns, out, truncated, err := Collect(rows, 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if truncated {
		t.Fatalf("unexpected truncation")
	}
	if len(columns) != 3 || columns[0] != "id" {
		t.Fatalf("unexpected columns %v", columns)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	if out[0]["name"] != "first" {
		t.Fatalf("unexpected row %v", out[0])
	}
	if out[0]["payload"] != "hi\n" {
		t.Fatalf("blob not normalized to string: %#v", out[0]["payload"])
	}
	if out[1]["payload"] != nil {
		t.Fatalf("NULL not preserved: %#v", out[1]["payload"])
	}
}

func TestCollectHonorsLimit(t *testing.T) {
	db := openTestDB(t)
	rows, err := db.Query(`SELECT id FROM items ORDER BY id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	_, out, truncated, err := Collect(rows, 2)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(out) != 2 || !truncated {
		t.Fatalf("limit not honored: %d rows, truncated=%v", len(out), truncated)
	}
}
