// Package surreal is the SurrealDB docstore backend. Collections map to
// SurrealDB tables; documents carrying an integral "id" keep it as their
// record id (clients:7), so native queries can dereference foreign keys with
// type::thing. Aggregations run the pipeline's native SurrealQL.
package surreal

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"ecombench/internal/docstore"
	"ecombench/internal/errkind"
)

// seqField keeps insertion order; it is stripped on read.
const seqField = "_seq"

const insertChunk = 1000

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

type rows = []map[string]any

// queryFn executes SurrealQL and returns one result per statement.
type queryFn func(ctx context.Context, sql string, vars map[string]any) ([]surrealdb.QueryResult[rows], error)

// Store is a SurrealDB-backed docstore.Store.
type Store struct {
	db    *surrealdb.DB
	query queryFn
}

var _ docstore.Store = (*Store)(nil)

// Open connects over WebSocket with the surrealcbor codec, signs in when
// credentials are set and selects namespace and database.
func Open(ctx context.Context, cfg docstore.Config) (*Store, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("surrealdb: parse url: %w", err)
	}
	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	db, err := surrealdb.FromConnection(ctx, gorillaws.New(conf))
	if err != nil {
		return nil, fmt.Errorf("surrealdb: connect: %w", err)
	}
	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("surrealdb: signin: %w", err)
		}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("surrealdb: use %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}

	s := &Store{db: db}
	s.query = func(ctx context.Context, sql string, vars map[string]any) ([]surrealdb.QueryResult[rows], error) {
		res, err := surrealdb.Query[rows](ctx, db, sql, vars)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, nil
		}
		return *res, nil
	}
	return s, nil
}

func init() {
	docstore.Register("surrealdb", func(ctx context.Context, cfg docstore.Config) (docstore.Store, error) {
		return Open(ctx, cfg)
	})
}

// exec runs sql and returns the rows of its last statement.
func (s *Store) exec(ctx context.Context, sql string, vars map[string]any) (rows, error) {
	res, err := s.query(ctx, sql, vars)
	if err != nil {
		return nil, err
	}
	for i, r := range res {
		if r.Status != "OK" {
			return nil, fmt.Errorf("statement %d status %s", i, r.Status)
		}
	}
	if len(res) == 0 {
		return nil, nil
	}
	return res[len(res)-1].Result, nil
}

func checkIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

func (s *Store) count(ctx context.Context, collection string) (int64, error) {
	out, err := s.exec(ctx, fmt.Sprintf("SELECT count() AS n FROM %s GROUP ALL", collection), nil)
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	n, _ := docstore.Integer(out[0]["n"])
	return n, nil
}

// InsertMany inserts docs in chunks, tagging each with its insertion
// sequence.
func (s *Store) InsertMany(ctx context.Context, collection string, docs []docstore.Document) (int, error) {
	if err := checkIdent(collection); err != nil {
		return 0, errkind.Query("insert", collection, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	seq, err := s.count(ctx, collection)
	if err != nil {
		return 0, errkind.Query("insert", collection, err)
	}
	stmt := fmt.Sprintf("INSERT INTO %s $docs RETURN NONE", collection)
	written := 0
	for start := 0; start < len(docs); start += insertChunk {
		end := start + insertChunk
		if end > len(docs) {
			end = len(docs)
		}
		chunk := make([]map[string]any, 0, end-start)
		for _, d := range docs[start:end] {
			seq++
			m := map[string]any(docstore.Clone(d))
			m[seqField] = seq
			chunk = append(chunk, m)
		}
		if _, err := s.exec(ctx, stmt, map[string]any{"docs": chunk}); err != nil {
			return written, errkind.Query("insert", collection, err)
		}
		written += len(chunk)
	}
	return written, nil
}

// Find selects matching records in insertion order.
func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	if err := checkIdent(collection); err != nil {
		return nil, errkind.Query("find", collection, err)
	}
	var (
		conds []string
		vars  = map[string]any{}
		i     int
	)
	for field, want := range filter {
		if err := checkIdent(field); err != nil {
			return nil, errkind.Query("find", collection, err)
		}
		name := fmt.Sprintf("f%d", i)
		conds = append(conds, fmt.Sprintf("%s = $%s", field, name))
		vars[name] = want
		i++
	}
	sql := "SELECT * FROM " + collection
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	sql += " ORDER BY " + seqField

	out, err := s.exec(ctx, sql, vars)
	if err != nil {
		return nil, errkind.Query("find", collection, err)
	}
	docs := make([]docstore.Document, 0, len(out))
	for _, m := range out {
		docs = append(docs, normalize(m))
	}
	return docs, nil
}

// Clear deletes every record of the tables; the tables remain defined.
func (s *Store) Clear(ctx context.Context, collections ...string) error {
	for _, c := range collections {
		if err := checkIdent(c); err != nil {
			return errkind.Query("clear", c, err)
		}
		if _, err := s.exec(ctx, fmt.Sprintf("DELETE %s RETURN NONE", c), nil); err != nil {
			return errkind.Query("clear", c, err)
		}
	}
	return nil
}

// Aggregate runs p.Native.
func (s *Store) Aggregate(ctx context.Context, collection string, p docstore.Pipeline) ([]docstore.Document, error) {
	if strings.TrimSpace(p.Native) == "" {
		return nil, errkind.Query("aggregate", collection, fmt.Errorf("no SurrealQL rendition"))
	}
	out, err := s.exec(ctx, p.Native, nil)
	if err != nil {
		return nil, errkind.Query("aggregate", collection, err)
	}
	docs := make([]docstore.Document, 0, len(out))
	for _, m := range out {
		docs = append(docs, normalize(m))
	}
	return docs, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close(context.Background())
}

// normalize strips the sequence field and maps record ids back to plain
// integers. Generated (non-integral) record ids are dropped.
func normalize(m map[string]any) docstore.Document {
	d := docstore.Document(m)
	delete(d, seqField)
	raw, ok := d["id"]
	if !ok {
		return d
	}
	var rid *models.RecordID
	switch v := raw.(type) {
	case models.RecordID:
		rid = &v
	case *models.RecordID:
		rid = v
	}
	if rid == nil {
		return d
	}
	if n, ok := docstore.Integer(rid.ID); ok {
		d["id"] = n
	} else {
		delete(d, "id")
	}
	return d
}
