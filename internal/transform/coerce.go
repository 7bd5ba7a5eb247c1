package transform

import (
	"fmt"
	"strings"
	"time"

	"ecombench/internal/docstore"
	"ecombench/internal/errkind"
)

// dateLayouts are tried in order when a date arrives as text.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// field fetches a required field of row idx. Absent and nil values are both
// schema mismatches; no defaults are filled.
func field(entity string, idx int, d docstore.Document, name string) (any, error) {
	v, ok := d[name]
	if !ok || v == nil {
		return nil, errkind.Schema("extract "+entity, fmt.Sprintf("row %d", idx),
			fmt.Errorf("missing field %q", name))
	}
	return v, nil
}

func mismatch(entity string, idx int, name string, v any, want string) error {
	return errkind.Schema("extract "+entity, fmt.Sprintf("row %d", idx),
		fmt.Errorf("field %q: cannot use %T as %s", name, v, want))
}

func intField(entity string, idx int, d docstore.Document, name string) (int64, error) {
	v, err := field(entity, idx, d, name)
	if err != nil {
		return 0, err
	}
	n, ok := docstore.Integer(v)
	if !ok {
		return 0, mismatch(entity, idx, name, v, "integer")
	}
	return n, nil
}

func floatField(entity string, idx int, d docstore.Document, name string) (float64, error) {
	v, err := field(entity, idx, d, name)
	if err != nil {
		return 0, err
	}
	f, ok := docstore.Number(v)
	if !ok {
		return 0, mismatch(entity, idx, name, v, "number")
	}
	return f, nil
}

func stringField(entity string, idx int, d docstore.Document, name string) (string, error) {
	v, err := field(entity, idx, d, name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(entity, idx, name, v, "string")
	}
	return s, nil
}

func timeField(entity string, idx int, d docstore.Document, name string) (time.Time, error) {
	v, err := field(entity, idx, d, name)
	if err != nil {
		return time.Time{}, err
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t != nil {
			return *t, nil
		}
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
	}
	return time.Time{}, mismatch(entity, idx, name, v, "date")
}
