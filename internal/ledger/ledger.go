// Package ledger records benchmark timings. The primary store is a CSV file
// that only ever grows; every append rewrites the file through a temporary
// sibling and an atomic rename.
package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"ecombench/internal/errkind"
)

// Backend identifies which store produced a timing.
type Backend string

const (
	Relational Backend = "relational"
	Document   Backend = "document"
)

// Header is the column layout of the ledger file.
var Header = []string{"query", "backend", "elapsed_seconds"}

// Older ledgers used these names for backend and elapsed_seconds.
var headerAliases = map[string]string{
	"banco": "backend",
	"tempo": "elapsed_seconds",
}

// Record is one timed operation.
type Record struct {
	Query          string  `json:"query"`
	Backend        Backend `json:"backend"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Sink receives records. Implementations must keep the given order.
type Sink interface {
	Append(ctx context.Context, recs ...Record) error
}

// Ledger is the CSV-backed Sink. The zero value is not usable; call Open.
type Ledger struct {
	mu   sync.Mutex
	path string
}

// Open returns a ledger for path. The file is created on first append.
func Open(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errkind.Persistence("open ledger", path, errors.New("path must not be empty"))
	}
	return &Ledger{path: path}, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string { return l.path }

// Append adds recs after every existing row. With no records it is a no-op.
func (l *Ledger) Append(ctx context.Context, recs ...Record) error {
	if len(recs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errkind.Persistence("append", l.path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	head, existing, err := l.read()
	if err != nil {
		return err
	}
	all := make([]Record, 0, len(existing)+len(recs))
	all = append(all, existing...)
	all = append(all, recs...)

	if err := writeAtomic(l.path, head, all); err != nil {
		return errkind.Persistence("append", l.path, err)
	}
	return nil
}

// Load returns every record in file order. A missing file is an empty ledger.
func (l *Ledger) Load() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Ledger) load() ([]Record, error) {
	_, recs, err := l.read()
	return recs, err
}

// read returns the file's header as written and its records. A missing or
// empty file yields a nil header.
func (l *Ledger) read() ([]string, []Record, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errkind.Persistence("read", l.path, err)
	}
	defer f.Close()

	head, recs, err := Decode(f)
	if err != nil {
		return nil, nil, errkind.Persistence("read", l.path, err)
	}
	return head, recs, nil
}

// canonical maps a header cell to its column name in Header.
func canonical(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

// Decode parses ledger CSV and returns the header as found along with the
// records. Columns are located by header name, so legacy headers and
// reordered columns are accepted.
func Decode(r io.Reader) ([]string, []Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("ledger: header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range head {
		idx[canonical(h)] = i
	}
	for _, want := range Header {
		if _, ok := idx[want]; !ok {
			return nil, nil, fmt.Errorf("ledger: header %v lacks column %q", head, want)
		}
	}

	var out []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return head, out, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("ledger: line %d: %w", line, err)
		}
		cell := func(name string) string {
			if i := idx[name]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		secs, err := strconv.ParseFloat(cell("elapsed_seconds"), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("ledger: line %d: elapsed_seconds: %w", line, err)
		}
		out = append(out, Record{
			Query:          cell("query"),
			Backend:        Backend(cell("backend")),
			ElapsedSeconds: secs,
		})
	}
}

// Encode writes head and recs as CSV. Cells follow the column order of head,
// which may use legacy names; a nil head means Header.
func Encode(w io.Writer, head []string, recs []Record) error {
	if head == nil {
		head = Header
	}
	cols := make([]string, len(head))
	for i, h := range head {
		cols[i] = canonical(h)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(head); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for _, r := range recs {
		for i, c := range cols {
			switch c {
			case "query":
				row[i] = r.Query
			case "backend":
				row[i] = string(r.Backend)
			case "elapsed_seconds":
				row[i] = strconv.FormatFloat(r.ElapsedSeconds, 'f', -1, 64)
			default:
				row[i] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeAtomic replaces path with head and recs. The file keeps its mode;
// a new file gets 0644.
func writeAtomic(path string, head []string, recs []Record) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod: %w", err)
	}
	if err := Encode(tmp, head, recs); err != nil {
		tmp.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
