package storage

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"ecombench/internal/errkind"
	"ecombench/internal/table"
)

// WriteMode selects what WriteTable does with rows already in the table.
type WriteMode string

const (
	// Append keeps existing rows.
	Append WriteMode = "append"
	// Replace truncates the table first.
	Replace WriteMode = "replace"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// WriteTable streams t into the named table through LoadBatches. It returns
// the number of rows written.
func WriteTable(
	ctx context.Context,
	log *zap.Logger,
	repo Repository,
	name string,
	t table.Table,
	mode WriteMode,
	batchSize int,
) (int64, error) {
	if !tableNameRe.MatchString(name) {
		return 0, errkind.Query("write", name, fmt.Errorf("invalid table name"))
	}
	switch mode {
	case Replace:
		if err := repo.Truncate(ctx, name); err != nil {
			return 0, errkind.Query("truncate", name, err)
		}
	case Append, "":
	default:
		return 0, fmt.Errorf("storage: unknown write mode %q", mode)
	}
	if t.Len() == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		return 0, fmt.Errorf("storage: batch size must be > 0")
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, batchSize)
	go func() {
		defer close(in)
		for _, r := range t.Rows {
			select {
			case in <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	copyFn := func(ctx context.Context, cols []string, rows [][]any) (int64, error) {
		return repo.CopyFrom(ctx, name, cols, rows)
	}
	n, err := LoadBatches(ctx, log.With(zap.String("table", name)), t.Columns, in, batchSize, copyFn)
	if err != nil {
		return n, errkind.Query("write", name, err)
	}
	return n, nil
}

// ReadTable returns every row of the named table.
func ReadTable(ctx context.Context, repo Repository, name string) (table.Table, error) {
	if !tableNameRe.MatchString(name) {
		return table.Table{}, errkind.Query("read", name, fmt.Errorf("invalid table name"))
	}
	t, err := repo.Query(ctx, "SELECT * FROM "+name)
	if err != nil {
		return table.Table{}, errkind.Query("read", name, err)
	}
	return t, nil
}

// ResetSchema drops every table and recreates the relational model.
func ResetSchema(ctx context.Context, repo Repository) error {
	if err := repo.DropSchema(ctx); err != nil {
		return errkind.Query("drop schema", "", err)
	}
	if err := repo.CreateSchema(ctx); err != nil {
		return errkind.Query("create schema", "", err)
	}
	return nil
}
