// Command ecombench generates a synthetic e-commerce dataset, loads it into a
// document store and, reshaped, into a relational store, then times the same
// queries against both and appends the timings to a CSV ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ecombench/internal/config"
	"ecombench/internal/docstore"
	"ecombench/internal/ledger"
	"ecombench/internal/logging"
	"ecombench/internal/metrics"
	"ecombench/internal/metrics/datadog"
	"ecombench/internal/metrics/prompush"
	"ecombench/internal/pipeline"
	"ecombench/internal/storage"

	// register all backends with the factories; config picks one of each.
	_ "ecombench/internal/docstore/all"
	_ "ecombench/internal/storage/all"
)

// Exit codes.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process globals.
func run(ctx context.Context, args []string, getenv func(string) string, stderr io.Writer) int {
	fs := flag.NewFlagSet("ecombench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath        = fs.String("config", "", "pipeline config JSON path (defaults built in when empty)")
		envFile        = fs.String("env-file", ".env", "dotenv file loaded before reading the environment")
		validate       = fs.Bool("validate", false, "validate the configuration and exit")
		verbose        = fs.Bool("v", false, "enable debug logs")
		metricsBackend = fs.String("metrics-backend", "", "metrics backend: none, pushgateway, datadog (overrides env METRICS_BACKEND)")
		pushGatewayURL = fs.String("pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
		statsdAddr     = fs.String("statsd-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
		skipLoad       = fs.Bool("skip-load", false, "benchmark the data already in both stores")
		skipBench      = fs.Bool("skip-bench", false, "load both stores without running the benchmark")
		fromArtifacts  = fs.String("from-artifacts", "", "load the JSON dataset in this directory instead of generating one")
	)
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(stderr, "load %s: %v\n", *envFile, err)
		return exitConfig
	}
	p, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	config.ApplyEnv(&p, getenv)
	if *verbose {
		p.Logging.Level = "debug"
	}

	issues := config.Validate(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid: %s\n", orDefault(*cfgPath))
		return exitConfig
	}
	if *validate {
		fmt.Fprintf(stderr, "configuration is valid: %s\n", orDefault(*cfgPath))
		return exitOK
	}

	log, err := logging.New(logging.Config{
		Job:    p.Job,
		Level:  p.Logging.Level,
		Format: p.Logging.Format,
		File:   p.Logging.File,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	defer func() { _ = log.Sync() }()

	flush := setupMetrics(log, p.Job,
		pick(*metricsBackend, getenv("METRICS_BACKEND")),
		pick(*pushGatewayURL, getenv("PUSHGATEWAY_URL"), "http://localhost:9091"),
		pick(*statsdAddr, getenv("DD_AGENT_ADDR"), "127.0.0.1:8125"),
	)
	defer flush()

	start := time.Now()
	opts := pipeline.Options{
		Job:         p.Job,
		Counts:      p.Counts(),
		Seed:        p.Generator.Seed,
		ArtifactDir: p.Generator.OutputDir,
		ReplayDir:   *fromArtifacts,
		BatchSize:   p.Runtime.BatchSize,
		SnapshotDir: p.Bench.SnapshotDir,
		SkipLoad:    *skipLoad,
		SkipBench:   *skipBench,
	}
	if err := execute(ctx, log, p, opts); err != nil {
		log.Error("run failed", zap.Error(err))
		return exitRuntime
	}
	log.Info("completed", zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)))
	return exitOK
}

// execute opens one handle per store and the ledger sinks, then runs the
// pipeline.
func execute(ctx context.Context, log *zap.Logger, p config.Pipeline, opts pipeline.Options) error {
	log.Info("connecting",
		zap.String("document", p.Document.Kind),
		zap.String("relational", p.Relational.Kind),
	)
	docs, err := docstore.New(ctx, p.DocstoreConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := docs.Close(); err != nil {
			log.Warn("close document store", zap.Error(err))
		}
	}()

	rel, err := storage.New(ctx, p.StorageConfig())
	if err != nil {
		return err
	}
	defer rel.Close()

	csvLedger, err := ledger.Open(p.Bench.LedgerPath)
	if err != nil {
		return err
	}
	var sink ledger.Sink = csvLedger
	if k := p.Bench.Kafka; len(k.Brokers) > 0 {
		ks, err := ledger.NewKafkaSink(strings.Join(k.Brokers, ","), k.Topic)
		if err != nil {
			return err
		}
		defer func() {
			if err := ks.Close(); err != nil {
				log.Warn("close kafka sink", zap.Error(err))
			}
		}()
		sink = ledger.NewMultiSink(csvLedger, ks)
		log.Info("ledger mirrored to kafka", zap.Strings("brokers", k.Brokers), zap.String("topic", k.Topic))
	}

	r := &pipeline.Runner{
		Docs:   docs,
		Rel:    rel,
		Ledger: sink,
		Log:    log,
		Opts:   opts,
	}
	sum, err := r.Run(ctx)
	for _, rec := range sum.Bench {
		log.Info("timing",
			zap.String("query", rec.Query),
			zap.String("backend", string(rec.Backend)),
			zap.Float64("elapsed_seconds", rec.ElapsedSeconds),
		)
	}
	if err == nil {
		log.Info("ledger updated", zap.String("path", csvLedger.Path()), zap.Int("records", len(sum.Loads)+len(sum.Bench)))
	}
	return err
}

// setupMetrics installs the selected backend and returns its flush func.
func setupMetrics(log *zap.Logger, job, backend, gatewayURL, statsdAddr string) func() {
	nop := func() {}
	switch backend {
	case "", "none":
		log.Debug("metrics disabled")
		return nop
	case "pushgateway":
		b, err := prompush.NewBackend(job, gatewayURL)
		if err != nil {
			log.Warn("metrics: prom push backend unavailable; using nop", zap.Error(err))
			return nop
		}
		metrics.SetBackend(b)
		log.Info("metrics enabled", zap.String("backend", backend), zap.String("url", gatewayURL))
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       statsdAddr,
			Namespace:  "ecombench.",
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			log.Warn("metrics: datadog backend unavailable; using nop", zap.Error(err))
			return nop
		}
		metrics.SetBackend(b)
		log.Info("metrics enabled", zap.String("backend", backend), zap.String("addr", statsdAddr))
	default:
		log.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", backend))
		return nop
	}
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush error", zap.Error(err))
		}
	}
}

// pick returns the first non-empty value.
func pick(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func orDefault(path string) string {
	if path == "" {
		return "(built-in defaults)"
	}
	return path
}
