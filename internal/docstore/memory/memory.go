// Package memory is a process-local docstore backend. It keeps collections
// as ordered slices and evaluates aggregation stages in Go. It is used by
// tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ecombench/internal/docstore"
	"ecombench/internal/errkind"
)

// Store is an in-memory docstore.Store.
type Store struct {
	mu    sync.RWMutex
	colls map[string][]docstore.Document
}

var _ docstore.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{colls: make(map[string][]docstore.Document)}
}

func init() {
	docstore.Register("memory", func(_ context.Context, _ docstore.Config) (docstore.Store, error) {
		return New(), nil
	})
}

// InsertMany appends deep copies of docs.
func (s *Store) InsertMany(ctx context.Context, collection string, docs []docstore.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.colls == nil {
		return 0, errkind.Query("insert", collection, fmt.Errorf("store closed"))
	}
	for _, d := range docs {
		s.colls[collection] = append(s.colls[collection], docstore.Clone(d))
	}
	return len(docs), nil
}

// Find returns deep copies of matching documents in insertion order.
func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.colls == nil {
		return nil, errkind.Query("find", collection, fmt.Errorf("store closed"))
	}
	src := s.colls[collection]
	out := make([]docstore.Document, 0, len(src))
	for _, d := range src {
		if filter.Matches(d) {
			out = append(out, docstore.Clone(d))
		}
	}
	return out, nil
}

// Clear empties the collections but keeps them registered.
func (s *Store) Clear(ctx context.Context, collections ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.colls == nil {
		return errkind.Query("clear", "", fmt.Errorf("store closed"))
	}
	for _, c := range collections {
		s.colls[c] = s.colls[c][:0:0]
	}
	return nil
}

// Aggregate evaluates p.Stages.
func (s *Store) Aggregate(ctx context.Context, collection string, p docstore.Pipeline) ([]docstore.Document, error) {
	out, err := docstore.Evaluate(ctx, s, collection, p)
	if err != nil {
		return nil, errkind.Query("aggregate", collection, err)
	}
	return out, nil
}

// Collections lists the collections that exist, including cleared ones.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.colls))
	for k := range s.colls {
		out = append(out, k)
	}
	return out
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colls = nil
	return nil
}
