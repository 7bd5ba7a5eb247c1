// Package ddl defines a small, backend-agnostic model for SQL DDL, the
// relational benchmark schema expressed in that model, and a renderer for
// CREATE TABLE statements.
//
// Backend packages (e.g., internal/storage/mysql/ddl) supply a Dialect with
// their quoting, type names and auto-increment spelling and render the
// shared schema through BuildCreateTableSQLFor.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures the few places where CREATE TABLE differs between
// backends.
type Dialect struct {
	// Name prefixes error messages, e.g. "mysql ddl".
	Name string
	// Quote quotes one identifier segment. Nil emits names verbatim.
	Quote func(string) string
	// IfNotExists adds IF NOT EXISTS.
	IfNotExists bool
	// AutoIncrement renders the type clause of an auto-increment column,
	// including any NOT NULL it implies. Nil falls back to "<type> NOT NULL".
	AutoIncrement func(sqlType string) string
	// InlineAutoPK means the AutoIncrement clause already declares the
	// primary key, so the column is left out of the PRIMARY KEY constraint.
	InlineAutoPK bool
}

// Generic emits unquoted identifiers and plain CREATE TABLE.
var Generic = Dialect{Name: "ddl"}

func (d Dialect) quote(id string) string {
	if d.Quote == nil {
		return id
	}
	return d.Quote(id)
}

// QuoteFQN quotes each dotted segment of fqn with d.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.quote(p))
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders t with the Generic dialect.
//
// Rules:
//
//   - t.FQN must be non-empty; it is emitted verbatim as the table name.
//
//   - Each column must have a non-empty Name and SQLType.
//
//   - A column is rendered as:
//
//     <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
//   - Columns with PrimaryKey == true are collected into a trailing
//     PRIMARY KEY (...) clause, followed by one FOREIGN KEY clause per
//     foreign key.
func BuildCreateTableSQL(t TableDef) (string, error) {
	return BuildCreateTableSQLFor(Generic, t)
}

// BuildCreateTableSQLFor renders t for dialect d.
func BuildCreateTableSQLFor(d Dialect, t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))
	pks := make([]string, 0, len(t.Columns))
	known := make(map[string]bool, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.Name, name)
		}
		known[name] = true

		var sb strings.Builder
		sb.WriteString(d.quote(name))
		sb.WriteByte(' ')

		switch {
		case c.AutoIncrement && d.AutoIncrement != nil:
			sb.WriteString(d.AutoIncrement(typ))
		case c.AutoIncrement:
			sb.WriteString(typ)
			sb.WriteString(" NOT NULL")
		default:
			sb.WriteString(typ)
			if !c.Nullable {
				sb.WriteString(" NOT NULL")
			}
		}

		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())

		if c.PrimaryKey && !(c.AutoIncrement && d.InlineAutoPK) {
			pks = append(pks, d.quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	for _, fk := range t.ForeignKeys {
		if !known[fk.Column] {
			return "", fmt.Errorf("%s: foreign key on unknown column %s in table %s", d.Name, fk.Column, fqn)
		}
		cols = append(cols, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
			d.quote(fk.Column), d.QuoteFQN(fk.RefTable), d.quote(fk.RefColumn)))
	}

	create := "CREATE TABLE "
	if d.IfNotExists {
		create += "IF NOT EXISTS "
	}
	stmt := fmt.Sprintf(
		"%s%s (\n  %s\n);",
		create,
		d.QuoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}
