package docstore

import (
	"context"
	"sort"

	"ecombench/internal/table"
)

// ToTable reads the documents of collection matching filter and lays them
// out as a table. Columns are the sorted union of top-level field names;
// absent fields become nil cells. Nested values are kept as-is.
func ToTable(ctx context.Context, s Store, collection string, filter Filter) (table.Table, error) {
	docs, err := s.Find(ctx, collection, filter)
	if err != nil {
		return table.Table{}, err
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, d := range docs {
		for k := range d {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return Tabulate(docs, cols), nil
}

// Tabulate lays docs out under the given columns.
func Tabulate(docs []Document, columns []string) table.Table {
	t := table.New(columns...)
	t.Rows = make([][]any, 0, len(docs))
	for _, d := range docs {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = d[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Documents converts table rows back into documents keyed by column name.
func Documents(t table.Table) []Document {
	maps := t.Maps()
	out := make([]Document, len(maps))
	for i, m := range maps {
		out[i] = Document(m)
	}
	return out
}
