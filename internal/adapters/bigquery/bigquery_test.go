package bigquery

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	bq "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

func TestNormalizeValue(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   bq.Value
		want any
	}{
		{"nil", nil, nil},
		{"string", "hello", "hello"},
		{"int64", int64(42), int64(42)},
		{"float", 3.5, 3.5},
		{"bool", true, true},
		{"bytes", []byte{0xde, 0xad}, "3q0="},
		{"timestamp", ts, "2025-06-01T12:30:00Z"},
		{"date", civil.Date{Year: 2025, Month: 6, Day: 1}, "2025-06-01"},
		{"numeric", big.NewRat(5, 2), "2.500000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeValue(tc.in)
			if got != tc.want {
				t.Fatalf("normalizeValue(%v) = %v (%T), want %v", tc.in, got, got, tc.want)
			}
		})
	}
}

func TestNormalizeValueNested(t *testing.T) {
	in := bq.Value([]bq.Value{
		map[string]bq.Value{"city": "Oslo", "when": civil.Date{Year: 2025, Month: 1, Day: 2}},
		int64(7),
	})
	got := normalizeValue(in)

	items, ok := got.([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("normalizeValue = %v (%T), want two items", got, got)
	}
	record, ok := items[0].(map[string]any)
	if !ok {
		t.Fatalf("nested record not normalized: %T", items[0])
	}
	if record["when"] != "2025-01-02" {
		t.Errorf("nested date = %v, want 2025-01-02", record["when"])
	}

	// Everything a row produces must survive JSON marshaling.
	if _, err := json.Marshal(got); err != nil {
		t.Fatalf("normalized value does not marshal: %v", err)
	}
}

func TestSchemaColumns(t *testing.T) {
	schema := bq.Schema{
		{Name: "id", Type: bq.IntegerFieldType, Required: true},
		{Name: "tags", Type: bq.StringFieldType, Repeated: true},
		{Name: "meta", Type: bq.RecordFieldType, Schema: bq.Schema{
			{Name: "source", Type: bq.StringFieldType},
		}},
	}

	columns := schemaColumns(schema)
	if len(columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(columns))
	}
	if columns[0].Mode != "REQUIRED" {
		t.Errorf("id mode = %s, want REQUIRED", columns[0].Mode)
	}
	if columns[1].Mode != "REPEATED" {
		t.Errorf("tags mode = %s, want REPEATED", columns[1].Mode)
	}
	if columns[2].Mode != "NULLABLE" {
		t.Errorf("meta mode = %s, want NULLABLE", columns[2].Mode)
	}
	if len(columns[2].Fields) != 1 || columns[2].Fields[0].Name != "source" {
		t.Errorf("nested fields not carried: %+v", columns[2].Fields)
	}

	names := columnNames(schema)
	if len(names) != 3 || names[0] != "id" || names[2] != "meta" {
		t.Errorf("columnNames = %v", names)
	}
}
