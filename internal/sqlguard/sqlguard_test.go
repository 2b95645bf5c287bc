package sqlguard

import (
	"strings"
	"testing"
)

func TestEnsureReadOnlyAccepts(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"plain select", "SELECT * FROM users"},
		{"lowercase", "select id, name from users where id = 1"},
		{"with cte", "WITH recent AS (SELECT * FROM events) SELECT count(*) FROM recent"},
		{"trailing semicolon", "SELECT 1;"},
		{"trailing semicolon and space", "SELECT 1;  \n"},
		{"leading line comment", "-- fetch everything\nSELECT * FROM users"},
		{"leading block comment", "/* audit */ SELECT * FROM users"},
		{"semicolon inside literal", "SELECT * FROM notes WHERE body = 'a; b; c'"},
		{"doubled quote literal", "SELECT 'it''s; fine'"},
		{"quoted identifier", `SELECT "weird;name" FROM t`},
		{"newlines", "SELECT id,\n       name\nFROM users"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := EnsureReadOnly(tc.query); err != nil {
				t.Fatalf("EnsureReadOnly(%q) = %v, want nil", tc.query, err)
			}
		})
	}
}

func TestEnsureReadOnlyRejects(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{"insert", "INSERT INTO users (name) VALUES ('x')", "only SELECT and WITH"},
		{"update", "UPDATE users SET name = 'x'", "only SELECT and WITH"},
		{"delete", "DELETE FROM users", "only SELECT and WITH"},
		{"drop", "DROP TABLE users", "only SELECT and WITH"},
		{"truncate", "TRUNCATE users", "only SELECT and WITH"},
		{"create", "CREATE TABLE t (id int)", "only SELECT and WITH"},
		{"grant", "GRANT ALL ON users TO intruder", "only SELECT and WITH"},
		{"stacked drop", "SELECT 1; DROP TABLE users", "multiple statements"},
		{"stacked select", "SELECT 1; SELECT 2", "multiple statements"},
		{"delete behind block comment", "/* just reading */ DELETE FROM users", "only SELECT and WITH"},
		{"drop behind line comment", "-- harmless\nDROP TABLE users", "only SELECT and WITH"},
		{"empty", "", "empty query"},
		{"whitespace only", "   \n\t", "empty query"},
		{"comment only", "-- nothing here", "empty query"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := EnsureReadOnly(tc.query)
			if err == nil {
				t.Fatalf("EnsureReadOnly(%q) = nil, want error", tc.query)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("EnsureReadOnly(%q) = %q, want it to mention %q", tc.query, err, tc.wantMsg)
			}
		})
	}
}

func TestEnsureWrite(t *testing.T) {
	if err := EnsureWrite("INSERT INTO users (name) VALUES ('x')"); err != nil {
		t.Fatalf("EnsureWrite(insert) = %v, want nil", err)
	}
	if err := EnsureWrite("CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("EnsureWrite(ddl) = %v, want nil", err)
	}
	if err := EnsureWrite("SELECT * FROM users"); err == nil {
		t.Fatal("EnsureWrite(select) = nil, want error")
	}
	if err := EnsureWrite("WITH x AS (SELECT 1) SELECT * FROM x"); err == nil {
		t.Fatal("EnsureWrite(with) = nil, want error")
	}
	if err := EnsureWrite("  -- only a comment"); err == nil {
		t.Fatal("EnsureWrite(comment only) = nil, want error")
	}
}

func TestStripCommentsKeepsLiterals(t *testing.T) {
	in := "SELECT '-- not a comment', \"/* nor this */\" FROM t -- real comment"
	got := stripComments(in)
	if !strings.Contains(got, "'-- not a comment'") {
		t.Errorf("stripComments removed text inside a string literal: %q", got)
	}
	if !strings.Contains(got, `"/* nor this */"`) {
		t.Errorf("stripComments removed text inside a quoted identifier: %q", got)
	}
	if strings.Contains(got, "real comment") {
		t.Errorf("stripComments kept a line comment: %q", got)
	}
}

func TestStripCommentsUnterminatedBlock(t *testing.T) {
	got := stripComments("SELECT 1 /* never closed")
	if strings.Contains(got, "never closed") {
		t.Errorf("stripComments kept an unterminated block comment: %q", got)
	}
}
