// Package ddl holds the SQLite spelling of the relational schema.
//
// SQLite is dynamically typed, so the mapping prefers canonical affinities:
// INTEGER for keys and counts, TEXT for names and ISO-8601 dates, NUMERIC for
// money.
package ddl

import (
	"strings"

	gddl "ecombench/internal/ddl"
)

// Types maps the logical schema types to SQLite column types.
var Types = gddl.TypeMap{
	gddl.Int:       "INTEGER",
	gddl.Text:      "TEXT",
	gddl.Date:      "TEXT",
	gddl.Timestamp: "TEXT",
	gddl.Money:     "NUMERIC(10,2)",
}

// Dialect renders double-quoted identifiers and rowid-alias surrogate keys.
var Dialect = gddl.Dialect{
	Name:        "sqlite ddl",
	Quote:       quoteIdent,
	IfNotExists: true,
	// Only the exact spelling INTEGER PRIMARY KEY aliases the rowid.
	AutoIncrement: func(string) string { return "INTEGER PRIMARY KEY AUTOINCREMENT" },
	InlineAutoPK:  true,
}

// SchemaSQL returns the CREATE TABLE statements for the benchmark schema.
func SchemaSQL() ([]string, error) {
	return gddl.BuildSchemaSQL(Dialect, Types)
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
