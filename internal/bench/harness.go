// Package bench times a fixed catalog of equivalent queries against the
// relational and the document store and records the results.
package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"ecombench/internal/docstore"
	"ecombench/internal/errkind"
	"ecombench/internal/ledger"
	"ecombench/internal/metrics"
	"ecombench/internal/storage"
	"ecombench/internal/table"
)

// Options tune a Harness. Zero values are usable.
type Options struct {
	// Job labels metrics.
	Job string
	// SnapshotDir receives <backend>_<query>.csv per run. Empty disables
	// snapshots.
	SnapshotDir string
	// Catalog overrides the reference catalog.
	Catalog []Query
	Log     *zap.Logger
}

// Harness runs catalog queries. Runs are sequential; the mutex only guards
// the result buffer.
type Harness struct {
	rel     storage.Repository
	docs    docstore.Store
	sink    ledger.Sink
	opts    Options
	log     *zap.Logger
	catalog []Query

	mu      sync.Mutex
	results []ledger.Record
}

// New builds a harness over one handle per store. sink may be nil, in which
// case RunSuite keeps results in memory only.
func New(rel storage.Repository, docs docstore.Store, sink ledger.Sink, opts Options) *Harness {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = Catalog()
	}
	return &Harness{
		rel:     rel,
		docs:    docs,
		sink:    sink,
		opts:    opts,
		log:     log.Named("bench"),
		catalog: catalog,
	}
}

// Results returns every record measured so far, in execution order.
func (h *Harness) Results() []ledger.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ledger.Record(nil), h.results...)
}

// SnapshotPath is where the result of query on backend is written.
func (h *Harness) SnapshotPath(backend ledger.Backend, query string) string {
	return filepath.Join(h.opts.SnapshotDir, fmt.Sprintf("%s_%s.csv", backend, query))
}

// RunOne executes one catalog query on one backend, fully materializing the
// result, and returns the elapsed time. The record is kept in memory; the
// ledger is written by RunSuite.
func (h *Harness) RunOne(ctx context.Context, backend ledger.Backend, name string) (time.Duration, error) {
	q, ok := Lookup(h.catalog, name)
	if !ok {
		return 0, errkind.Query("run", name, fmt.Errorf("unknown query"))
	}

	var (
		res     table.Table
		err     error
		start   = time.Now()
		elapsed time.Duration
	)
	switch backend {
	case ledger.Relational:
		if h.rel == nil {
			return 0, errkind.Query("run relational", name, errors.New("no relational store"))
		}
		res, err = h.rel.Query(ctx, q.SQL)
		elapsed = time.Since(start)
	case ledger.Document:
		if h.docs == nil {
			return 0, errkind.Query("run document", name, errors.New("no document store"))
		}
		var docs []docstore.Document
		docs, err = h.docs.Aggregate(ctx, q.Collection, q.Pipeline)
		elapsed = time.Since(start)
		res = docstore.Tabulate(docs, q.Columns)
	default:
		return 0, errkind.Query("run", name, fmt.Errorf("unknown backend %q", backend))
	}

	metrics.RecordQuery(h.opts.Job, name, string(backend), err, elapsed)
	if err != nil {
		h.log.Warn("query failed", zap.String("query", name), zap.String("backend", string(backend)), zap.Error(err))
		return elapsed, errkind.Query("run "+string(backend), name, err)
	}

	// The timing is kept even if the snapshot below fails.
	h.mu.Lock()
	h.results = append(h.results, ledger.Record{
		Query:          name,
		Backend:        backend,
		ElapsedSeconds: elapsed.Seconds(),
	})
	h.mu.Unlock()

	var buf bytes.Buffer
	if err := res.WriteCSV(&buf); err != nil {
		return elapsed, errkind.Persistence("render", name, err)
	}
	if h.opts.SnapshotDir != "" {
		if err := res.SaveCSV(h.SnapshotPath(backend, name)); err != nil {
			return elapsed, errkind.Persistence("snapshot", name, err)
		}
	}

	h.log.Info("query measured",
		zap.String("query", name),
		zap.String("backend", string(backend)),
		zap.Duration("elapsed", elapsed),
		zap.Int("rows", res.Len()),
		zap.String("fingerprint", fmt.Sprintf("%016x", xxh3.Hash(buf.Bytes()))),
	)
	return elapsed, nil
}

// RunSuite runs every catalog query, relational first then document, and
// appends this run's records to the sink. A failure stops the suite; the
// records measured before it are still appended.
func (h *Harness) RunSuite(ctx context.Context) ([]ledger.Record, error) {
	h.mu.Lock()
	from := len(h.results)
	h.mu.Unlock()

	var runErr error
loop:
	for _, q := range h.catalog {
		for _, b := range []ledger.Backend{ledger.Relational, ledger.Document} {
			if _, err := h.RunOne(ctx, b, q.Name); err != nil {
				runErr = err
				break loop
			}
		}
	}

	h.mu.Lock()
	recs := append([]ledger.Record(nil), h.results[from:]...)
	h.mu.Unlock()

	if h.sink != nil && len(recs) > 0 {
		// Measurements outlive a cancelled run.
		if err := h.sink.Append(context.WithoutCancel(ctx), recs...); err != nil {
			h.log.Error("ledger append failed", zap.Int("records", len(recs)), zap.Error(err))
			return recs, errors.Join(runErr, err)
		}
	}
	return recs, runErr
}
