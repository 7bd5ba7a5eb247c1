// Package storage is the relational-store gateway: the Repository contract,
// a factory registry that backends join from their init functions, and
// backend-agnostic helpers for loading and reading tables.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ecombench/internal/errkind"
	"ecombench/internal/table"
)

// Config selects and parameterizes a backend.
type Config struct {
	// Kind is the backend name, e.g. "mysql", "postgres", "sqlite".
	Kind string
	// DSN is passed to the backend driver unchanged.
	DSN string
}

// Repository is one open relational database.
type Repository interface {
	// Ping verifies the connection.
	Ping(ctx context.Context) error
	// CreateSchema creates the clients, products, orders and order_items
	// tables.
	CreateSchema(ctx context.Context) error
	// DropSchema drops every table of the target schema with foreign key
	// checks disabled for the duration.
	DropSchema(ctx context.Context) error
	// CopyFrom bulk-inserts rows aligned to columns into table and returns
	// the number of rows written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Truncate removes every row of table.
	Truncate(ctx context.Context, table string) error
	// Query runs a read statement and materializes its result.
	Query(ctx context.Context, sql string) (table.Table, error)
	// Exec runs a statement that returns no rows (typically DDL).
	Exec(ctx context.Context, sql string) error
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind. Backends call it from
// init.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// ListKinds returns a sorted snapshot of the registered kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens the backend named by cfg.Kind. Factory errors are reported as
// connection failures.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	r, err := f(ctx, cfg)
	if err != nil {
		return nil, errkind.Connection("connect", cfg.Kind, err)
	}
	return r, nil
}
