// Package config defines the JSON-serializable configuration of a benchmark
// run. A run is described by one pipeline file; values missing from the file
// keep the reference defaults, and environment variables (optionally read
// from a .env file) override both.
//
// Example (trimmed):
//
//	{
//	  "job":        "ecombench",
//	  "generator":  { "clients": 5000, "products": 100, "seed": 1 },
//	  "document":   { "kind": "surrealdb", "url": "ws://localhost:8000/rpc" },
//	  "relational": { "kind": "mysql", "dsn": "root:root@tcp(localhost:3306)/pedidos" },
//	  "bench":      { "ledger_path": "data/benchmark_results.csv" }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"ecombench/internal/docstore"
	"ecombench/internal/generator"
	"ecombench/internal/storage"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels metrics and log lines.
	Job string `json:"job"`

	Generator  Generator     `json:"generator"`
	Document   Document      `json:"document"`
	Relational Relational    `json:"relational"`
	Runtime    RuntimeConfig `json:"runtime"`
	Bench      Bench         `json:"bench"`
	Logging    Logging       `json:"logging"`
}

// Generator sizes the synthetic dataset.
type Generator struct {
	Clients  int   `json:"clients"`
	Products int   `json:"products"`
	Reviews  int   `json:"reviews"`
	Carts    int   `json:"carts"`
	Seed     int64 `json:"seed"`

	// OutputDir receives the JSON artifacts. Empty skips writing them.
	OutputDir string `json:"output_dir"`
}

// Document selects the document store backend.
type Document struct {
	// Kind is one of "memory", "pebble", "surrealdb".
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	Namespace string `json:"namespace"`
	Database  string `json:"database"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	// Path is the data directory of the pebble backend.
	Path string `json:"path"`
}

// Relational selects the relational store backend.
type Relational struct {
	// Kind is one of "mysql", "postgres", "sqlite".
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`
}

// RuntimeConfig controls batching of relational loads.
type RuntimeConfig struct {
	BatchSize int `json:"batch_size"`
}

// Bench configures where measurements go.
type Bench struct {
	LedgerPath  string `json:"ledger_path"`
	SnapshotDir string `json:"snapshot_dir"`
	Kafka       Kafka  `json:"kafka"`
}

// Kafka enables the ledger mirror when Brokers is non-empty.
type Kafka struct {
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
}

// Logging configures the zap logger.
type Logging struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	// File, when set, receives log output in addition to stdout.
	File string `json:"file"`
}

// Default returns the reference configuration: MySQL and SurrealDB on
// localhost with the reference dataset size.
func Default() Pipeline {
	c := generator.DefaultCounts
	return Pipeline{
		Job: "ecombench",
		Generator: Generator{
			Clients:   c.Clients,
			Products:  c.Products,
			Reviews:   c.Reviews,
			Carts:     c.Carts,
			Seed:      1,
			OutputDir: "data/json/generated_data",
		},
		Document: Document{
			Kind:      "surrealdb",
			URL:       "ws://localhost:8000/rpc",
			Namespace: "ecombench",
			Database:  "pedidos",
			Username:  "root",
			Password:  "root",
		},
		Relational: Relational{
			Kind: "mysql",
			DSN:  mysqlDSN("root", "root", "localhost", "3306", "pedidos"),
		},
		Runtime: RuntimeConfig{BatchSize: 1000},
		Bench: Bench{
			LedgerPath:  "data/benchmark_results.csv",
			SnapshotDir: "data/csv",
			Kafka:       Kafka{Topic: "ecombench.timings"},
		},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// Decode reads a pipeline from JSON on top of Default. Unknown fields are
// rejected.
func Decode(b []byte) (Pipeline, error) {
	p := Default()
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("config: decode: %w", err)
	}
	return p, nil
}

// Load reads the pipeline file at path. An empty path yields Default.
func Load(path string) (Pipeline, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(b)
}

// Counts returns the generator counts.
func (p Pipeline) Counts() generator.Counts {
	return generator.Counts{
		Clients:  p.Generator.Clients,
		Products: p.Generator.Products,
		Reviews:  p.Generator.Reviews,
		Carts:    p.Generator.Carts,
	}
}

// DocstoreConfig maps the document section onto the docstore factory.
func (p Pipeline) DocstoreConfig() docstore.Config {
	d := p.Document
	return docstore.Config{
		Kind:      d.Kind,
		URL:       d.URL,
		Namespace: d.Namespace,
		Database:  d.Database,
		Username:  d.Username,
		Password:  d.Password,
		Path:      d.Path,
	}
}

// StorageConfig maps the relational section onto the storage factory.
func (p Pipeline) StorageConfig() storage.Config {
	return storage.Config{Kind: p.Relational.Kind, DSN: p.Relational.DSN}
}
