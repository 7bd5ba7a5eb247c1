package config

// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap/zapcore"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "relational.dsn",
// "bench.kafka.topic"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var (
	documentKinds   = []string{"memory", "pebble", "surrealdb"}
	relationalKinds = []string{"mysql", "postgres", "sqlite"}
)

// Validate performs static validation of p. It does not mutate p and does
// not contact any store.
func Validate(p Pipeline) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(p.Job) == "" {
		add(SeverityError, "job", "job must not be empty; it labels metrics and log lines")
	}

	g := p.Generator
	for _, f := range []struct {
		path string
		n    int
	}{
		{"generator.clients", g.Clients},
		{"generator.products", g.Products},
		{"generator.reviews", g.Reviews},
		{"generator.carts", g.Carts},
	} {
		if f.n < 0 {
			add(SeverityError, f.path, "must be >= 0, got %d", f.n)
		}
	}
	if g.Carts > 0 && g.Clients == 0 {
		add(SeverityError, "generator.clients", "carts need at least one client")
	}
	if g.Carts > 0 && g.Products == 0 {
		add(SeverityWarning, "generator.products", "no products; every cart will be empty")
	}

	d := p.Document
	switch d.Kind {
	case "":
		add(SeverityError, "document.kind", "is required (one of %s)", strings.Join(documentKinds, ", "))
	case "memory":
		add(SeverityWarning, "document.kind", "memory store is process-local; data is lost on exit")
	case "pebble":
		if strings.TrimSpace(d.Path) == "" {
			add(SeverityError, "document.path", "is required for the pebble backend")
		}
	case "surrealdb":
		if u, err := url.Parse(d.URL); err != nil || u.Scheme == "" || u.Host == "" {
			add(SeverityError, "document.url", "must be an absolute URL such as ws://localhost:8000/rpc")
		}
		if d.Namespace == "" || d.Database == "" {
			add(SeverityError, "document.namespace", "namespace and database are required for surrealdb")
		}
	default:
		add(SeverityError, "document.kind", "unsupported kind %q (one of %s)", d.Kind, strings.Join(documentKinds, ", "))
	}

	r := p.Relational
	switch r.Kind {
	case "":
		add(SeverityError, "relational.kind", "is required (one of %s)", strings.Join(relationalKinds, ", "))
	case "mysql":
		if _, err := mysql.ParseDSN(r.DSN); err != nil {
			add(SeverityError, "relational.dsn", "invalid mysql DSN: %v", err)
		}
	case "postgres", "sqlite":
		if strings.TrimSpace(r.DSN) == "" {
			add(SeverityError, "relational.dsn", "is required for %s", r.Kind)
		}
	default:
		add(SeverityError, "relational.kind", "unsupported kind %q (one of %s)", r.Kind, strings.Join(relationalKinds, ", "))
	}
	if r.Kind == "sqlite" && strings.Contains(r.DSN, ":memory:") {
		add(SeverityWarning, "relational.dsn", "in-memory sqlite is discarded at exit")
	}

	if p.Runtime.BatchSize <= 0 {
		add(SeverityError, "runtime.batch_size", "must be > 0, got %d", p.Runtime.BatchSize)
	}

	b := p.Bench
	if strings.TrimSpace(b.LedgerPath) == "" {
		add(SeverityError, "bench.ledger_path", "is required")
	}
	if b.SnapshotDir == "" {
		add(SeverityWarning, "bench.snapshot_dir", "empty; result snapshots are disabled")
	}
	if len(b.Kafka.Brokers) > 0 && strings.TrimSpace(b.Kafka.Topic) == "" {
		add(SeverityError, "bench.kafka.topic", "is required when brokers are set")
	}

	if _, err := zapcore.ParseLevel(p.Logging.Level); p.Logging.Level != "" && err != nil {
		add(SeverityError, "logging.level", "unknown level %q", p.Logging.Level)
	}
	switch p.Logging.Format {
	case "", "console", "json":
	default:
		add(SeverityError, "logging.format", "must be console or json, got %q", p.Logging.Format)
	}

	return issues
}
