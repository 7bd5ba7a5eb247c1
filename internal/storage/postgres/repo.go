// Package postgres implements a Postgres repository using pgx v5. Bulk loads
// use the COPY protocol.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	pgddl "ecombench/internal/storage/postgres/ddl"
	"ecombench/internal/table"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, pool.Close, nil
}

// Ping verifies the connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// CreateSchema creates the benchmark tables if they do not exist.
func (r *Repository) CreateSchema(ctx context.Context) error {
	stmts, err := pgddl.SchemaSQL()
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := r.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// DropSchema drops every table of the current schema. CASCADE removes the
// dependent foreign keys, so drop order does not matter.
func (r *Repository) DropSchema(ctx context.Context) error {
	rows, err := r.pool.Query(ctx, "SELECT tablename FROM pg_tables WHERE schemaname = current_schema()")
	if err != nil {
		return fmt.Errorf("postgres: list tables: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("postgres: list tables: %w", err)
	}
	for _, n := range names {
		if err := r.Exec(ctx, "DROP TABLE IF EXISTS "+pgddl.QuoteIdent(n)+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}

// CopyFrom streams rows into table with COPY.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy into %s: %s (%s): %w", table, pgErr.Detail, pgErr.SQLState(), err)
		}
		return n, fmt.Errorf("postgres: copy into %s: %w", table, err)
	}
	return n, nil
}

// Truncate empties table. CASCADE also empties tables that reference it.
func (r *Repository) Truncate(ctx context.Context, table string) error {
	return r.Exec(ctx, "TRUNCATE TABLE "+pgddl.Dialect.QuoteFQN(table)+" CASCADE")
}

// Query runs a read statement and returns its rows. NUMERIC values are
// converted to float64.
func (r *Repository) Query(ctx context.Context, sql string) (table.Table, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return table.Table{}, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	out := table.New(cols...)

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return table.Table{}, fmt.Errorf("postgres: values: %w", err)
		}
		for i, v := range vals {
			vals[i] = plainValue(v)
		}
		out.Rows = append(out.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return table.Table{}, fmt.Errorf("postgres: rows: %w", err)
	}
	return out, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

func plainValue(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case int32:
		return int64(t)
	default:
		return v
	}
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
