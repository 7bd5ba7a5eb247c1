package mysql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ecombench/internal/storage"
)

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	got := insertSQL("order_items", []string{"order_id", "product_id"}, 2)
	want := "INSERT INTO `order_items` (`order_id`, `product_id`) VALUES (?, ?), (?, ?)"
	if got != want {
		t.Fatalf("insertSQL = %q, want %q", got, want)
	}
}

func TestChunkRows(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 7)
	chunks := chunkRows(rows, 3)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 3 || len(chunks[2]) != 1 {
		t.Fatalf("chunk sizes = %d,%d,%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if got := chunkRows(nil, 3); len(got) != 0 {
		t.Fatalf("chunkRows(nil) = %v", got)
	}
}

func TestNewRepository_InvalidDSN(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, _, err := NewRepository(ctx, Config{DSN: ""}); err == nil {
		t.Fatalf("empty DSN: error = nil")
	}
	_, _, err := NewRepository(ctx, Config{DSN: "no-slash-here"})
	if err == nil || !strings.Contains(err.Error(), "parse dsn") {
		t.Fatalf("malformed DSN: error = %v", err)
	}
}

// TestMySQLStorageRegistrationUsesNewRepositoryHook checks that storage.New
// goes through the hook and that Close reaches the cleanup function.
func TestMySQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotDSN string
		closed bool
		fake   = &Repository{}
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotDSN = cfg.DSN
		return fake, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u:p@tcp(db:3306)/shop"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotDSN != "u:p@tcp(db:3306)/shop" {
		t.Fatalf("hook DSN = %q", gotDSN)
	}
	if w, ok := repo.(*wrappedRepo); !ok || w.Repository != fake {
		t.Fatalf("storage.New() = %T, want *wrappedRepo around fake", repo)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not invoke closeFn")
	}

	want := errors.New("refused")
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		return nil, nil, want
	}
	if _, err := storage.New(context.Background(), storage.Config{Kind: "mysql"}); !errors.Is(err, want) {
		t.Fatalf("storage.New error = %v, want %v", err, want)
	}
}
