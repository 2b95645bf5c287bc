// Package sqlrows turns database/sql result sets into JSON-friendly row
// maps for the data-store adapters, which pass query results through
// verbatim instead of scanning into models.
package sqlrows

import (
	"database/sql"
	"fmt"
	"time"
)

// Collect drains rows into ordered column names and one map per row.
// A positive limit caps the row count; truncated reports whether more
// rows were available past the cap.
func Collect(rows *sql.Rows, limit int) (columns []string, out []map[string]any, truncated bool, err error) {
	columns, err = rows.Columns()
	if err != nil {
		return nil, nil, false, fmt.Errorf("read columns: %w", err)
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if limit > 0 && len(out) >= limit {
			truncated = true
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, false, fmt.Errorf("scan row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalize(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, fmt.Errorf("iterate rows: %w", err)
	}
	return columns, out, truncated, nil
}

// normalize maps driver values onto types encoding/json renders sanely.
func normalize(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return v
	}
}
