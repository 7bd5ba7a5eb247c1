package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"ecombench/internal/model"
	"ecombench/internal/storage"
	"ecombench/internal/table"
)

/*
Package-level test helpers (TB-aware)
*/

// newRepo opens a private in-memory database behind the same adapter the
// storage factory returns.
func newRepo(tb testing.TB) *wrappedRepo {
	tb.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: ":memory:"})
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	w := &wrappedRepo{Repository: r, closeFn: closeFn}
	tb.Cleanup(w.Close)
	return w
}

func newSchemaRepo(tb testing.TB) *wrappedRepo {
	tb.Helper()
	r := newRepo(tb)
	if err := r.CreateSchema(context.Background()); err != nil {
		tb.Fatalf("CreateSchema: %v", err)
	}
	return r
}

func seed(tb testing.TB, r storage.Repository) {
	tb.Helper()
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	steps := []struct {
		table string
		cols  []string
		rows  [][]any
	}{
		{model.TableClients, model.ClientColumns, [][]any{
			model.Client{ID: 1, Name: "Ana", Email: "ana@example.com", RegisteredOn: day}.Row(),
			model.Client{ID: 2, Name: "Bruno", Email: "bruno@example.com", RegisteredOn: day}.Row(),
		}},
		{model.TableProducts, model.ProductColumns, [][]any{
			model.Product{ID: 10, Name: "Mesa", Price: 99.5}.Row(),
		}},
		{model.TableOrders, model.OrderColumns, [][]any{
			model.Order{ID: 1, ClientID: 1, OrderDate: day}.Row(),
		}},
		{model.TableOrderItems, model.OrderItemColumns, [][]any{
			model.OrderItem{OrderID: 1, ProductID: 10, Quantity: 2, UnitPrice: 99.5}.Row(),
		}},
	}
	for _, s := range steps {
		if _, err := r.CopyFrom(ctx, s.table, s.cols, s.rows); err != nil {
			tb.Fatalf("CopyFrom(%s): %v", s.table, err)
		}
	}
}

/*
Unit tests
*/

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatalf("NewRepository(blank DSN) error = nil")
	}
}

func TestCreateSchemaAndCopyFrom(t *testing.T) {
	t.Parallel()

	r := newSchemaRepo(t)
	seed(t, r)

	got, err := r.Query(context.Background(),
		`SELECT c.name, SUM(oi.quantity) AS q FROM clients c
		 JOIN orders o ON o.client_id = c.id
		 JOIN order_items oi ON oi.order_id = o.id
		 GROUP BY c.name`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("rows = %d, want 1", got.Len())
	}
	if got.Rows[0][0] != "Ana" || got.Rows[0][1] != int64(2) {
		t.Fatalf("row = %v, want [Ana 2]", got.Rows[0])
	}
}

func TestCopyFrom_ForeignKeyEnforced(t *testing.T) {
	t.Parallel()

	r := newSchemaRepo(t)
	_, err := r.CopyFrom(context.Background(), model.TableOrders, model.OrderColumns,
		[][]any{model.Order{ID: 1, ClientID: 42, OrderDate: time.Now()}.Row()})
	if err == nil {
		t.Fatalf("CopyFrom with dangling client_id: error = nil")
	}
}

func TestCopyFrom_RowLengthMismatch(t *testing.T) {
	t.Parallel()

	r := newSchemaRepo(t)
	n, err := r.CopyFrom(context.Background(), model.TableProducts, model.ProductColumns, [][]any{{1, "x"}})
	if err == nil || n != 0 {
		t.Fatalf("CopyFrom mismatched row: n=%d err=%v", n, err)
	}
}

func TestDropSchemaRemovesEveryTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newSchemaRepo(t)
	seed(t, r)
	if err := r.Exec(ctx, "CREATE TABLE leftover (x INTEGER)"); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	if err := r.DropSchema(ctx); err != nil {
		t.Fatalf("DropSchema: %v", err)
	}

	got, err := r.Query(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("tables after drop = %v, want none", got.Rows)
	}

	// Foreign keys are back on after the drop.
	if err := r.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	if _, err := r.CopyFrom(ctx, model.TableOrders, model.OrderColumns,
		[][]any{model.Order{ID: 1, ClientID: 7, OrderDate: time.Now()}.Row()}); err == nil {
		t.Fatalf("foreign keys not re-enabled after DropSchema")
	}
}

func TestWriteAndReadTableThroughStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newSchemaRepo(t)

	products := table.New(model.ProductColumns...)
	for i := 1; i <= 25; i++ {
		if err := products.Append(int64(i), "p", 10.0); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	n, err := storage.WriteTable(ctx, nil, r, model.TableProducts, products, storage.Append, 7)
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if n != 25 {
		t.Fatalf("written = %d, want 25", n)
	}

	if _, err := storage.WriteTable(ctx, nil, r, model.TableProducts, products, storage.Replace, 100); err != nil {
		t.Fatalf("WriteTable replace: %v", err)
	}

	got, err := storage.ReadTable(ctx, r, model.TableProducts)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if got.Len() != 25 {
		t.Fatalf("rows = %d, want 25", got.Len())
	}
	if strings.Join(got.Columns, ",") != "id,name,price" {
		t.Fatalf("columns = %v", got.Columns)
	}
}

/*
Benchmarks
*/

func BenchmarkSqlite_CopyFrom(b *testing.B) {
	ctx := context.Background()
	r := newSchemaRepo(b)

	rows := make([][]any, 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := r.Truncate(ctx, model.TableProducts); err != nil {
			b.Fatalf("Truncate: %v", err)
		}
		for j := range rows {
			rows[j] = []any{int64(j + 1), "p", 1.5}
		}
		if _, err := r.CopyFrom(ctx, model.TableProducts, model.ProductColumns, rows); err != nil {
			b.Fatalf("CopyFrom: %v", err)
		}
	}
}
