package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	if issues := Validate(Default()); HasErrors(issues) {
		t.Fatalf("Default() has errors: %v", issues)
	}
}

func TestDecode_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	const js = `{
	  "job": "nightly",
	  "generator": { "clients": 10, "carts": 20, "seed": 7 },
	  "document": { "kind": "pebble", "path": "/tmp/docs" },
	  "relational": { "kind": "sqlite", "dsn": "file:bench.db" },
	  "bench": { "kafka": { "brokers": ["k1:9092"] } }
	}`

	p, err := Decode([]byte(js))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Job != "nightly" || p.Generator.Clients != 10 || p.Generator.Carts != 20 || p.Generator.Seed != 7 {
		t.Fatalf("generator = %+v", p.Generator)
	}
	// Fields absent from the file keep their defaults.
	if p.Generator.Products != Default().Generator.Products {
		t.Fatalf("products = %d, want default", p.Generator.Products)
	}
	if p.Runtime.BatchSize != 1000 || p.Bench.Kafka.Topic != "ecombench.timings" {
		t.Fatalf("runtime/bench defaults lost: %+v %+v", p.Runtime, p.Bench)
	}
	if got := p.StorageConfig(); got.Kind != "sqlite" || got.DSN != "file:bench.db" {
		t.Fatalf("StorageConfig = %+v", got)
	}
	if got := p.DocstoreConfig(); got.Kind != "pebble" || got.Path != "/tmp/docs" {
		t.Fatalf("DocstoreConfig = %+v", got)
	}
	if c := p.Counts(); c.Clients != 10 || c.Carts != 20 {
		t.Fatalf("Counts = %+v", c)
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte(`{"storage": {"kind": "postgres"}}`)); err == nil {
		t.Fatalf("Decode with unknown field: error = nil")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	p, err := Load("")
	if err != nil || !reflect.DeepEqual(p, Default()) {
		t.Fatalf("Load(\"\") = %+v, %v", p, err)
	}

	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := os.WriteFile(path, []byte(`{"job":"from-file"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if p, err = Load(path); err != nil || p.Job != "from-file" {
		t.Fatalf("Load(file) = %q, %v", p.Job, err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("Load(missing) error = nil")
	}
}

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, p Pipeline)
	}{
		{
			name: "empty environment keeps file values",
			env:  nil,
			check: func(t *testing.T, p Pipeline) {
				if !reflect.DeepEqual(p, Default()) {
					t.Fatalf("pipeline changed: %+v", p)
				}
			},
		},
		{
			name: "mysql parts rebuild the DSN",
			env:  map[string]string{"MYSQL_HOST": "db.internal", "MYSQL_DATABASE": "shop"},
			check: func(t *testing.T, p Pipeline) {
				c, err := mysql.ParseDSN(p.Relational.DSN)
				if err != nil {
					t.Fatalf("ParseDSN: %v", err)
				}
				if c.Addr != "db.internal:3306" || c.DBName != "shop" || c.User != "root" || !c.ParseTime {
					t.Fatalf("dsn = %s", p.Relational.DSN)
				}
			},
		},
		{
			name: "docker switches hosts",
			env:  map[string]string{"IN_DOCKER": "TRUE", "MYSQL_HOST": "ignored"},
			check: func(t *testing.T, p Pipeline) {
				c, err := mysql.ParseDSN(p.Relational.DSN)
				if err != nil {
					t.Fatalf("ParseDSN: %v", err)
				}
				if c.Addr != "mysql:3306" {
					t.Fatalf("addr = %s, want mysql:3306", c.Addr)
				}
				if p.Document.URL != "ws://surrealdb:8000/rpc" {
					t.Fatalf("surreal url = %s", p.Document.URL)
				}
			},
		},
		{
			name: "kafka and log level",
			env:  map[string]string{"KAFKA_BROKERS": "a:9092, b:9092,", "KAFKA_TOPIC": "t", "LOG_LEVEL": "debug"},
			check: func(t *testing.T, p Pipeline) {
				if !reflect.DeepEqual(p.Bench.Kafka.Brokers, []string{"a:9092", "b:9092"}) || p.Bench.Kafka.Topic != "t" {
					t.Fatalf("kafka = %+v", p.Bench.Kafka)
				}
				if p.Logging.Level != "debug" {
					t.Fatalf("level = %s", p.Logging.Level)
				}
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Default()
			ApplyEnv(&p, envFrom(tt.env))
			tt.check(t, p)
		})
	}
}

func TestApplyEnv_PostgresDSNOnlyForPostgres(t *testing.T) {
	t.Parallel()

	env := envFrom(map[string]string{"POSTGRES_DSN": "postgres://u@h/db"})

	p := Default()
	ApplyEnv(&p, env)
	if p.Relational.DSN == "postgres://u@h/db" {
		t.Fatalf("POSTGRES_DSN applied to mysql")
	}

	p.Relational.Kind = "postgres"
	ApplyEnv(&p, env)
	if p.Relational.DSN != "postgres://u@h/db" {
		t.Fatalf("dsn = %s", p.Relational.DSN)
	}
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	t.Parallel()

	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadDotEnv(missing) = %v", err)
	}
}

func TestShippedPipelines_AreValid(t *testing.T) {
	t.Parallel()

	paths, err := filepath.Glob(filepath.Join("..", "..", "configs", "pipelines", "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatalf("no pipeline files found")
	}
	for _, path := range paths {
		p, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", path, err)
		}
		if issues := Validate(p); HasErrors(issues) {
			t.Fatalf("%s: %v", path, issues)
		}
	}
}
