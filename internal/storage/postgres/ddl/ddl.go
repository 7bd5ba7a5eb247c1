// Package ddl holds the Postgres spelling of the relational schema.
package ddl

import (
	"strings"

	gddl "ecombench/internal/ddl"
)

// Types maps the logical schema types to Postgres column types.
var Types = gddl.TypeMap{
	gddl.Int:       "INTEGER",
	gddl.Text:      "VARCHAR(100)",
	gddl.Date:      "DATE",
	gddl.Timestamp: "TIMESTAMP",
	gddl.Money:     "NUMERIC(10,2)",
}

// Dialect renders double-quoted identifiers and identity surrogate keys.
// BY DEFAULT lets the loader supply explicit ids.
var Dialect = gddl.Dialect{
	Name:        "postgres ddl",
	Quote:       QuoteIdent,
	IfNotExists: true,
	AutoIncrement: func(sqlType string) string {
		return sqlType + " GENERATED BY DEFAULT AS IDENTITY"
	},
}

// SchemaSQL returns the CREATE TABLE statements for the benchmark schema.
func SchemaSQL() ([]string, error) {
	return gddl.BuildSchemaSQL(Dialect, Types)
}

// QuoteIdent safely quotes a single identifier segment for Postgres.
func QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
