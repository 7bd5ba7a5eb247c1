// Package ddl holds the MySQL spelling of the relational schema.
package ddl

import (
	"strings"

	gddl "ecombench/internal/ddl"
)

// Types is the MySQL type mapping. It is the reference mapping of the schema.
var Types = gddl.DefaultTypes

// Dialect renders backtick-quoted identifiers and AUTO_INCREMENT surrogate
// keys.
var Dialect = gddl.Dialect{
	Name:        "mysql ddl",
	Quote:       QuoteIdent,
	IfNotExists: true,
	AutoIncrement: func(sqlType string) string {
		return sqlType + " NOT NULL AUTO_INCREMENT"
	},
}

// SchemaSQL returns the CREATE TABLE statements for the benchmark schema.
func SchemaSQL() ([]string, error) {
	return gddl.BuildSchemaSQL(Dialect, Types)
}

// QuoteIdent wraps id in backticks, doubling embedded backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
