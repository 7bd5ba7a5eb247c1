package storage

import (
	"database/sql"
	"fmt"

	"ecombench/internal/table"
)

// ScanRows drains rows into a table. Driver byte slices become strings so the
// result is safe to keep after rows is closed.
func ScanRows(rows *sql.Rows) (table.Table, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return table.Table{}, fmt.Errorf("storage: columns: %w", err)
	}
	out := table.New(cols...)

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return table.Table{}, fmt.Errorf("storage: scan: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out.Rows = append(out.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return table.Table{}, fmt.Errorf("storage: rows: %w", err)
	}
	return out, nil
}
