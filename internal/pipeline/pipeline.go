// Package pipeline runs the end-to-end benchmark: generate a dataset, load it
// into the document store, reshape it into the relational model, load that
// into the relational store, and time the query catalog on both.
//
// Control flow is sequential. The only fan-out is the read-only extraction
// of the document collections.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ecombench/internal/bench"
	"ecombench/internal/docstore"
	"ecombench/internal/generator"
	"ecombench/internal/ledger"
	"ecombench/internal/metrics"
	"ecombench/internal/model"
	"ecombench/internal/storage"
	"ecombench/internal/transform"
)

// Options tune a run. Zero values skip the optional parts.
type Options struct {
	Job    string
	Counts generator.Counts
	Seed   int64
	// Now anchors generated dates; zero means time.Now.
	Now time.Time
	// ArtifactDir receives the generated JSON files when set.
	ArtifactDir string
	// ReplayDir loads a dataset previously written to ArtifactDir instead
	// of generating one.
	ReplayDir   string
	BatchSize   int
	SnapshotDir string

	// SkipLoad benchmarks whatever the stores already hold.
	SkipLoad  bool
	SkipBench bool
}

// Runner holds one handle per store, opened by the caller.
type Runner struct {
	Docs   docstore.Store
	Rel    storage.Repository
	Ledger ledger.Sink
	Log    *zap.Logger
	Opts   Options
}

// Summary reports what a run did.
type Summary struct {
	// Loads holds the write_<name> timings, documents first.
	Loads []ledger.Record
	// Bench holds the query timings.
	Bench []ledger.Record
	// Rows is the number of rows or documents written per target.
	Rows map[string]int64
}

const defaultBatchSize = 1000

// Run executes every enabled step. The first failure stops the run; timings
// recorded before it have already been appended to the ledger.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	sum := Summary{Rows: map[string]int64{}}

	if !r.Opts.SkipLoad {
		var ds map[string][]docstore.Document
		if err := r.step(ctx, log, "generate", func(ctx context.Context) error {
			var err error
			ds, err = r.generate(log)
			return err
		}); err != nil {
			return sum, err
		}

		if err := r.step(ctx, log, "load_documents", func(ctx context.Context) error {
			recs, err := r.loadDocuments(ctx, log, ds, sum.Rows)
			sum.Loads = append(sum.Loads, recs...)
			return err
		}); err != nil {
			return sum, err
		}

		var docs map[string][]docstore.Document
		if err := r.step(ctx, log, "extract", func(ctx context.Context) error {
			var err error
			docs, err = r.extract(ctx, log)
			return err
		}); err != nil {
			return sum, err
		}

		var res transform.Result
		if err := r.step(ctx, log, "transform", func(context.Context) error {
			var err error
			res, err = transform.Run(docs[model.CollClients], docs[model.CollProducts], docs[model.CollCarts])
			if err == nil {
				log.Info("relational model derived",
					zap.Int("clients", len(res.Clients)),
					zap.Int("products", len(res.Products)),
					zap.Int("orders", len(res.Orders)),
					zap.Int("order_items", len(res.Items)),
				)
			}
			return err
		}); err != nil {
			return sum, err
		}

		if err := r.step(ctx, log, "load_relational", func(ctx context.Context) error {
			recs, err := r.loadRelational(ctx, log, res, sum.Rows)
			sum.Loads = append(sum.Loads, recs...)
			return err
		}); err != nil {
			return sum, err
		}
	}

	if !r.Opts.SkipBench {
		if err := r.step(ctx, log, "benchmark", func(ctx context.Context) error {
			h := bench.New(r.Rel, r.Docs, r.Ledger, bench.Options{
				Job:         r.Opts.Job,
				SnapshotDir: r.Opts.SnapshotDir,
				Log:         log,
			})
			var err error
			sum.Bench, err = h.RunSuite(ctx)
			return err
		}); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// step times fn, logs the outcome and reports it to metrics.
func (r *Runner) step(ctx context.Context, log *zap.Logger, name string, fn func(context.Context) error) error {
	log.Info("step started", zap.String("step", name))
	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	metrics.RecordStep(r.Opts.Job, name, err, d)
	if err != nil {
		log.Error("step failed", zap.String("step", name), zap.Duration("elapsed", d), zap.Error(err))
		return fmt.Errorf("pipeline: %s: %w", name, err)
	}
	log.Info("step finished", zap.String("step", name), zap.Duration("elapsed", d.Truncate(time.Millisecond)))
	return nil
}

func (r *Runner) generate(log *zap.Logger) (map[string][]docstore.Document, error) {
	if dir := r.Opts.ReplayDir; dir != "" {
		docs, err := generator.LoadArtifacts(dir)
		if err != nil {
			return nil, err
		}
		log.Info("dataset replayed",
			zap.String("dir", dir),
			zap.Int("clients", len(docs[model.CollClients])),
			zap.Int("products", len(docs[model.CollProducts])),
			zap.Int("reviews", len(docs[model.CollReviews])),
			zap.Int("carts", len(docs[model.CollCarts])),
		)
		return docs, nil
	}

	now := r.Opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	ds := generator.NewAt(r.Opts.Seed, now).Generate(r.Opts.Counts)
	log.Info("dataset generated",
		zap.Int("clients", len(ds.Clients)),
		zap.Int("products", len(ds.Products)),
		zap.Int("reviews", len(ds.Reviews)),
		zap.Int("carts", len(ds.Carts)),
	)
	if r.Opts.ArtifactDir != "" {
		paths, err := ds.SaveJSON(r.Opts.ArtifactDir)
		if err != nil {
			return nil, err
		}
		log.Info("artifacts written", zap.Strings("paths", paths))
	}
	return ds.Documents(), nil
}

// loadDocuments clears the collections and inserts each one, timing every
// insert as write_<collection>.
func (r *Runner) loadDocuments(ctx context.Context, log *zap.Logger, docs map[string][]docstore.Document, rows map[string]int64) ([]ledger.Record, error) {
	if err := r.Docs.Clear(ctx, model.Collections...); err != nil {
		return nil, err
	}
	var recs []ledger.Record
	for _, coll := range model.Collections {
		start := time.Now()
		n, err := r.Docs.InsertMany(ctx, coll, docs[coll])
		elapsed := time.Since(start)
		if err != nil {
			return recs, r.flush(ctx, recs, err)
		}
		rows[coll] = int64(n)
		metrics.RecordRows(r.Opts.Job, coll, int64(n))
		log.Info("collection loaded", zap.String("collection", coll), zap.Int("documents", n), zap.Duration("elapsed", elapsed))
		recs = append(recs, ledger.Record{Query: "write_" + coll, Backend: ledger.Document, ElapsedSeconds: elapsed.Seconds()})
	}
	return recs, r.flush(ctx, recs, nil)
}

// extract reads every collection concurrently and returns its documents.
func (r *Runner) extract(ctx context.Context, log *zap.Logger) (map[string][]docstore.Document, error) {
	out := make([][]docstore.Document, len(model.Collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, coll := range model.Collections {
		i, coll := i, coll
		g.Go(func() error {
			t, err := docstore.ToTable(gctx, r.Docs, coll, nil)
			if err != nil {
				return err
			}
			out[i] = docstore.Documents(t)
			log.Debug("collection extracted", zap.String("collection", coll), zap.Int("rows", t.Len()), zap.Strings("columns", t.Columns))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	docs := make(map[string][]docstore.Document, len(out))
	for i, coll := range model.Collections {
		docs[coll] = out[i]
	}
	return docs, nil
}

// loadRelational resets the schema and writes the four tables in foreign-key
// order, timing each as write_<table>.
func (r *Runner) loadRelational(ctx context.Context, log *zap.Logger, res transform.Result, rows map[string]int64) ([]ledger.Record, error) {
	if err := storage.ResetSchema(ctx, r.Rel); err != nil {
		return nil, err
	}
	batch := r.Opts.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	var recs []ledger.Record
	for _, nt := range res.Tables() {
		start := time.Now()
		n, err := storage.WriteTable(ctx, log, r.Rel, nt.Name, nt.Table, storage.Append, batch)
		elapsed := time.Since(start)
		if err != nil {
			return recs, r.flush(ctx, recs, err)
		}
		rows[nt.Name] = n
		metrics.RecordRows(r.Opts.Job, nt.Name, n)
		log.Info("table loaded", zap.String("table", nt.Name), zap.Int64("rows", n), zap.Duration("elapsed", elapsed))
		recs = append(recs, ledger.Record{Query: "write_" + nt.Name, Backend: ledger.Relational, ElapsedSeconds: elapsed.Seconds()})
	}
	return recs, r.flush(ctx, recs, nil)
}

// flush appends recs to the ledger and returns cause joined with any append
// error.
func (r *Runner) flush(ctx context.Context, recs []ledger.Record, cause error) error {
	if r.Ledger == nil || len(recs) == 0 {
		return cause
	}
	return errors.Join(cause, r.Ledger.Append(context.WithoutCancel(ctx), recs...))
}
