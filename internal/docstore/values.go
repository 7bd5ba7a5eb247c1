package docstore

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Resolve resolves a dotted path such as "items.quantity" inside doc. Nested
// values may be Document or map[string]any.
func Resolve(doc Document, path string) (any, bool) {
	var cur any = map[string]any(doc)
	for _, seg := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

// AsArray returns v as a slice of values when it is one of the array shapes
// produced by the backends.
func AsArray(v any) ([]any, bool) {
	switch a := v.(type) {
	case []any:
		return a, true
	case []map[string]any:
		out := make([]any, len(a))
		for i := range a {
			out[i] = a[i]
		}
		return out, true
	case []Document:
		out := make([]any, len(a))
		for i := range a {
			out[i] = map[string]any(a[i])
		}
		return out, true
	default:
		return nil, false
	}
}

// Number converts the numeric representations produced by Go literals,
// encoding/json and CBOR into a float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Integer converts v to int64 when it is an integral number.
func Integer(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatInteger(f)
	case float32, float64:
		f, _ := Number(n)
		return floatInteger(f)
	default:
		return 0, false
	}
}

// floatInteger accepts whole numbers in [-2^63, 2^63).
func floatInteger(f float64) (int64, bool) {
	const limit = float64(1 << 63)
	if f != math.Trunc(f) || f < -limit || f >= limit {
		return 0, false
	}
	return int64(f), true
}

// Key renders v as a comparison key. Integral numbers of any representation
// share a key, so 3, int64(3), float64(3) and json.Number("3") group together.
func Key(v any) string {
	if i, ok := Integer(v); ok {
		return "n:" + strconv.FormatInt(i, 10)
	}
	if f, ok := Number(v); ok {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	if s, ok := v.(string); ok {
		return "s:" + s
	}
	return fmt.Sprintf("v:%v", v)
}

// Equal compares two document values by Key.
func Equal(a, b any) bool { return Key(a) == Key(b) }

// Clone deep-copies maps and slices so a backend never aliases caller data.
func Clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Document:
		return Clone(x)
	case map[string]any:
		return map[string]any(Clone(Document(x)))
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	case []Document:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	default:
		return v
	}
}

func compare(a, b any) int {
	fa, aok := Number(a)
	fb, bok := Number(b)
	switch {
	case aok && bok:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
