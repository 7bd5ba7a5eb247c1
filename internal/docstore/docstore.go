// Package docstore is the document-store gateway. It defines the Store
// contract used by the pipeline and the benchmark harness, a factory registry
// that backends join from their init functions, and a stage pipeline that
// embedded backends evaluate in process.
//
// Backends:
//
//   - "memory"   (ecombench/internal/docstore/memory)
//   - "pebble"   (ecombench/internal/docstore/pebble)
//   - "surrealdb" (ecombench/internal/docstore/surreal)
//
// Import ecombench/internal/docstore/all to register all of them.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ecombench/internal/errkind"
)

// Document is a schema-less record.
type Document map[string]any

// Filter selects documents whose fields equal the given values. An empty
// filter matches every document.
type Filter map[string]any

// Store is a named document database handle. Implementations are safe for
// concurrent reads; writes are issued by a single caller.
type Store interface {
	// InsertMany appends docs to collection, creating it on first use, and
	// returns the number of documents written.
	InsertMany(ctx context.Context, collection string, docs []Document) (int, error)
	// Find returns the documents of collection matching filter, in insertion
	// order where the backend keeps one.
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)
	// Clear deletes every document of the given collections. The collections
	// themselves are kept.
	Clear(ctx context.Context, collections ...string) error
	// Aggregate runs p against collection and returns the fully materialized
	// result.
	Aggregate(ctx context.Context, collection string, p Pipeline) ([]Document, error)
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind      string
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	// Path is the data directory of embedded backends.
	Path string
}

// Factory opens a Store for cfg.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// ListKinds returns the registered kinds, sorted.
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

// New opens the backend named by cfg.Kind. Open failures are reported as
// connection failures.
func New(ctx context.Context, cfg Config) (Store, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported document.kind=%s", cfg.Kind)
	}
	s, err := f(ctx, cfg)
	if err != nil {
		return nil, errkind.Connection("connect", cfg.Kind, err)
	}
	return s, nil
}

// Matches reports whether doc satisfies every equality in f.
func (f Filter) Matches(doc Document) bool {
	for k, want := range f {
		got, ok := Resolve(doc, k)
		if !ok || !Equal(got, want) {
			return false
		}
	}
	return true
}
