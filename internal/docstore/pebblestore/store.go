// Package pebblestore is an embedded, on-disk docstore backend built on
// cockroachdb/pebble. Each document is JSON-encoded under the key
// "d/<collection>/<seq>", where seq is a zero-padded insertion counter, so
// a prefix scan yields documents in insertion order.
package pebblestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"

	"ecombench/internal/docstore"
	"ecombench/internal/errkind"
)

const seqWidth = 20

// Store is a pebble-backed docstore.Store.
type Store struct {
	db *pebble.DB

	// mu serializes writers so sequence allocation stays dense.
	mu sync.Mutex
}

var _ docstore.Store = (*Store)(nil)

// Open opens (or creates) a store in dir.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("pebble: path must not be empty")
	}
	opts := &pebble.Options{
		MemTableSize: 64 << 20,
	}
	db, err := pebble.Open(filepath.Clean(dir), opts)
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Store{db: db}, nil
}

func init() {
	docstore.Register("pebble", func(_ context.Context, cfg docstore.Config) (docstore.Store, error) {
		return Open(cfg.Path)
	})
}

func prefix(collection string) []byte {
	return []byte("d/" + collection + "/")
}

// upperBound returns the smallest key greater than every key with p.
func upperBound(p []byte) []byte {
	ub := append([]byte(nil), p...)
	ub[len(ub)-1]++
	return ub
}

func docKey(collection string, seq uint64) []byte {
	return []byte(fmt.Sprintf("d/%s/%0*d", collection, seqWidth, seq))
}

func (s *Store) lastSeq(collection string) (uint64, error) {
	p := prefix(collection)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: p, UpperBound: upperBound(p)})
	if err != nil {
		return 0, err
	}
	defer it.Close()
	if !it.Last() {
		return 0, nil
	}
	tail := bytes.TrimPrefix(it.Key(), p)
	n, err := strconv.ParseUint(string(tail), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt key %q: %w", it.Key(), err)
	}
	return n, nil
}

// InsertMany writes docs in one batch.
func (s *Store) InsertMany(ctx context.Context, collection string, docs []docstore.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.lastSeq(collection)
	if err != nil {
		return 0, errkind.Query("insert", collection, err)
	}
	b := s.db.NewBatch()
	defer b.Close()
	for _, d := range docs {
		v, err := json.Marshal(d)
		if err != nil {
			return 0, errkind.Query("insert", collection, fmt.Errorf("encode: %w", err))
		}
		seq++
		if err := b.Set(docKey(collection, seq), v, nil); err != nil {
			return 0, errkind.Query("insert", collection, err)
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return 0, errkind.Query("insert", collection, err)
	}
	return len(docs), nil
}

// Find scans the collection prefix. Numbers decode as json.Number.
func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	p := prefix(collection)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: p, UpperBound: upperBound(p)})
	if err != nil {
		return nil, errkind.Query("find", collection, err)
	}
	defer it.Close()

	var out []docstore.Document
	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(it.Value()))
		dec.UseNumber()
		var d docstore.Document
		if err := dec.Decode(&d); err != nil {
			return nil, errkind.Query("find", collection, fmt.Errorf("decode %s: %w", it.Key(), err))
		}
		if filter.Matches(d) {
			out = append(out, d)
		}
	}
	if err := it.Error(); err != nil {
		return nil, errkind.Query("find", collection, err)
	}
	return out, nil
}

// Clear deletes each collection's key range.
func (s *Store) Clear(ctx context.Context, collections ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range collections {
		p := prefix(c)
		if err := s.db.DeleteRange(p, upperBound(p), pebble.Sync); err != nil {
			return errkind.Query("clear", c, err)
		}
	}
	return nil
}

// Aggregate evaluates p.Stages over a scan of collection.
func (s *Store) Aggregate(ctx context.Context, collection string, p docstore.Pipeline) ([]docstore.Document, error) {
	out, err := docstore.Evaluate(ctx, s, collection, p)
	if err != nil {
		return nil, errkind.Query("aggregate", collection, err)
	}
	return out, nil
}

func (s *Store) Close() error { return s.db.Close() }
