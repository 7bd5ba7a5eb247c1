// Package mysql implements a MySQL-backed storage.Repository using
// go-sql-driver/mysql. Bulk loads are multi-row INSERTs inside a
// transaction, chunked below the server's placeholder limit.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"ecombench/internal/storage"
	myddl "ecombench/internal/storage/mysql/ddl"
	"ecombench/internal/table"
)

// maxPlaceholders is the prepared-statement parameter limit of MySQL.
const maxPlaceholders = 65535

// Config holds MySQL repository configuration derived from storage.Config.
type Config struct {
	// DSN in go-sql-driver form, e.g. "root:pw@tcp(localhost:3306)/ecommerce".
	DSN string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a pool for cfg.DSN and returns a Close function for
// cleanup. Temporal columns are always scanned as time.Time.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	dc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}
	dc.ParseTime = true
	if dc.Loc == nil {
		dc.Loc = time.UTC
	}

	conn, err := mysql.NewConnector(dc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(conn)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Repository{db: db}, func() { db.Close() }, nil
}

// Ping verifies the connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("mysql: ping: %w", err)
	}
	return nil
}

// CreateSchema creates the benchmark tables if they do not exist.
func (r *Repository) CreateSchema(ctx context.Context) error {
	stmts, err := myddl.SchemaSQL()
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

// DropSchema drops every table of the current database. FOREIGN_KEY_CHECKS
// is session scoped, so the whole operation runs on one connection.
func (r *Repository) DropSchema(ctx context.Context) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("mysql: conn: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()")
	if err != nil {
		return fmt.Errorf("mysql: list tables: %w", err)
	}
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return fmt.Errorf("mysql: list tables: %w", err)
		}
		names = append(names, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("mysql: list tables: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return fmt.Errorf("mysql: disable fk checks: %w", err)
	}
	defer func() { _, _ = conn.ExecContext(context.WithoutCancel(ctx), "SET FOREIGN_KEY_CHECKS = 1") }()

	for _, n := range names {
		if _, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+myddl.QuoteIdent(n)); err != nil {
			return fmt.Errorf("mysql: drop %s: %w", n, err)
		}
	}
	return nil
}

// CopyFrom inserts rows with multi-row INSERT statements in one transaction.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}

	var inserted int64
	for _, chunk := range chunkRows(rows, maxPlaceholders/len(columns)) {
		args := make([]any, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			args = append(args, row...)
		}
		res, err := tx.ExecContext(ctx, insertSQL(table, columns, len(chunk)), args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert into %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Truncate deletes every row of table. TRUNCATE is refused on tables that
// are referenced by a foreign key.
func (r *Repository) Truncate(ctx context.Context, table string) error {
	return r.Exec(ctx, "DELETE FROM "+myddl.Dialect.QuoteFQN(table))
}

// Query runs a read statement and returns its rows.
func (r *Repository) Query(ctx context.Context, sql string) (table.Table, error) {
	rows, err := r.db.QueryContext(ctx, sql)
	if err != nil {
		return table.Table{}, fmt.Errorf("mysql: query: %w", err)
	}
	t, err := storage.ScanRows(rows)
	if err != nil {
		return table.Table{}, fmt.Errorf("mysql: %w", err)
	}
	return t, nil
}

// Exec executes a statement that returns no rows.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// insertSQL renders INSERT INTO t (c1, c2) VALUES (?, ?), (?, ?) for n rows.
func insertSQL(table string, columns []string, n int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(myddl.Dialect.QuoteFQN(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(") VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
	}
	return sb.String()
}

func chunkRows(rows [][]any, size int) [][][]any {
	if size <= 0 {
		size = 1
	}
	var out [][][]any
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}
