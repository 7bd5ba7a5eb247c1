package config

import (
	"errors"
	"io/fs"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named) into the process environment. Missing files are ignored; variables
// already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides p with the environment read through getenv (os.Getenv
// in production). Only non-empty variables take effect.
//
// IN_DOCKER=true switches hosts to their *_DOCKER variants. The MySQL DSN is
// rebuilt from MYSQL_* only when at least one of them is set.
func ApplyEnv(p *Pipeline, getenv func(string) string) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }
	inDocker := strings.EqualFold(env("IN_DOCKER"), "true")

	if v := env("LOG_LEVEL"); v != "" {
		p.Logging.Level = v
	}

	surreal := env("SURREALDB_URL")
	if inDocker {
		surreal = firstNonEmpty(env("SURREALDB_URL_DOCKER"), "ws://surrealdb:8000/rpc")
	}
	if surreal != "" {
		p.Document.URL = surreal
	}
	if v := env("SURREALDB_USER"); v != "" {
		p.Document.Username = v
	}
	if v := env("SURREALDB_PASSWORD"); v != "" {
		p.Document.Password = v
	}

	if p.Relational.Kind == "mysql" {
		host := env("MYSQL_HOST")
		if inDocker {
			host = firstNonEmpty(env("MYSQL_HOST_DOCKER"), "mysql")
		}
		parts := []string{env("MYSQL_USER"), env("MYSQL_PASSWORD"), host, env("MYSQL_PORT"), env("MYSQL_DATABASE")}
		if firstNonEmpty(parts...) != "" {
			p.Relational.DSN = mysqlDSN(
				firstNonEmpty(parts[0], "root"),
				firstNonEmpty(parts[1], "root"),
				firstNonEmpty(parts[2], "localhost"),
				firstNonEmpty(parts[3], "3306"),
				firstNonEmpty(parts[4], "pedidos"),
			)
		}
	}
	if v := env("POSTGRES_DSN"); v != "" && p.Relational.Kind == "postgres" {
		p.Relational.DSN = v
	}

	if v := env("KAFKA_BROKERS"); v != "" {
		p.Bench.Kafka.Brokers = splitList(v)
	}
	if v := env("KAFKA_TOPIC"); v != "" {
		p.Bench.Kafka.Topic = v
	}
}

func mysqlDSN(user, password, host, port, database string) string {
	c := mysql.NewConfig()
	c.User = user
	c.Passwd = password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(host, port)
	c.DBName = database
	c.ParseTime = true
	return c.FormatDSN()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
