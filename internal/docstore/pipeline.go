package docstore

import (
	"context"
	"fmt"
	"sort"
)

// GroupKeyField is the field holding the group key in Group output.
const GroupKeyField = "_id"

// Pipeline is one aggregation expressed twice: as a stage list evaluated in
// process by embedded backends, and as a native query string for backends
// with their own query language.
type Pipeline struct {
	Stages []Stage
	Native string
}

// Finder is the read side of a Store, used by Lookup stages.
type Finder interface {
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)
}

// Stage transforms a document stream.
type Stage interface {
	apply(ctx context.Context, src Finder, in []Document) ([]Document, error)
}

// Evaluate reads collection from src and runs the pipeline stages over it.
func Evaluate(ctx context.Context, src Finder, collection string, p Pipeline) ([]Document, error) {
	if len(p.Stages) == 0 {
		return nil, fmt.Errorf("docstore: pipeline on %s has no stages", collection)
	}
	docs, err := src.Find(ctx, collection, nil)
	if err != nil {
		return nil, err
	}
	for i, st := range p.Stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err = st.apply(ctx, src, docs)
		if err != nil {
			return nil, fmt.Errorf("docstore: stage %d (%T): %w", i, st, err)
		}
	}
	return docs, nil
}

// Unwind emits one document per element of the array at Field, with the
// element in place of the array. Documents whose array is missing or empty
// are dropped.
type Unwind struct {
	Field string
}

func (u Unwind) apply(_ context.Context, _ Finder, in []Document) ([]Document, error) {
	out := make([]Document, 0, len(in))
	for _, d := range in {
		arr, ok := AsArray(d[u.Field])
		if !ok {
			continue
		}
		for _, el := range arr {
			cp := make(Document, len(d))
			for k, v := range d {
				cp[k] = v
			}
			cp[u.Field] = el
			out = append(out, cp)
		}
	}
	return out, nil
}

// AccOp is an accumulator operation.
type AccOp int

const (
	// Count counts the documents of the group.
	Count AccOp = iota
	// Sum adds the numeric values at Field; missing or non-numeric values
	// contribute nothing.
	Sum
)

// Accumulator computes one output field per group.
type Accumulator struct {
	As    string
	Op    AccOp
	Field string
}

// Group buckets documents by the value at Key. Output documents carry the
// key under GroupKeyField plus one field per accumulator, in first-seen
// key order.
type Group struct {
	Key          string
	Accumulators []Accumulator
}

type groupState struct {
	key    any
	counts []int64
	sums   []float64
	ints   []bool
}

func (g Group) apply(_ context.Context, _ Finder, in []Document) ([]Document, error) {
	order := make([]string, 0)
	groups := make(map[string]*groupState)
	for _, d := range in {
		kv, _ := Resolve(d, g.Key)
		k := Key(kv)
		st, ok := groups[k]
		if !ok {
			st = &groupState{
				key:    kv,
				counts: make([]int64, len(g.Accumulators)),
				sums:   make([]float64, len(g.Accumulators)),
				ints:   make([]bool, len(g.Accumulators)),
			}
			for i := range st.ints {
				st.ints[i] = true
			}
			groups[k] = st
			order = append(order, k)
		}
		for i, acc := range g.Accumulators {
			switch acc.Op {
			case Count:
				st.counts[i]++
			case Sum:
				v, ok := Resolve(d, acc.Field)
				if !ok {
					continue
				}
				f, ok := Number(v)
				if !ok {
					continue
				}
				if _, isInt := Integer(v); !isInt {
					st.ints[i] = false
				}
				st.sums[i] += f
			default:
				return nil, fmt.Errorf("unknown accumulator op %d", acc.Op)
			}
		}
	}

	out := make([]Document, 0, len(order))
	for _, k := range order {
		st := groups[k]
		d := Document{GroupKeyField: st.key}
		for i, acc := range g.Accumulators {
			switch acc.Op {
			case Count:
				d[acc.As] = st.counts[i]
			case Sum:
				if st.ints[i] {
					d[acc.As] = int64(st.sums[i])
				} else {
					d[acc.As] = st.sums[i]
				}
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// Lookup joins each document with the documents of From whose ForeignField
// equals its LocalField. Matches are stored as an array under As.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

func (l Lookup) apply(ctx context.Context, src Finder, in []Document) ([]Document, error) {
	foreign, err := src.Find(ctx, l.From, nil)
	if err != nil {
		return nil, err
	}
	index := make(map[string][]any, len(foreign))
	for _, f := range foreign {
		v, ok := Resolve(f, l.ForeignField)
		if !ok {
			continue
		}
		k := Key(v)
		index[k] = append(index[k], map[string]any(f))
	}
	out := make([]Document, 0, len(in))
	for _, d := range in {
		cp := make(Document, len(d)+1)
		for k, v := range d {
			cp[k] = v
		}
		matches := []any{}
		if v, ok := Resolve(d, l.LocalField); ok {
			if m := index[Key(v)]; m != nil {
				matches = m
			}
		}
		cp[l.As] = matches
		out = append(out, cp)
	}
	return out, nil
}

// Set computes Field from each document with Fn.
type Set struct {
	Field string
	Fn    func(Document) (any, error)
}

func (s Set) apply(_ context.Context, _ Finder, in []Document) ([]Document, error) {
	out := make([]Document, 0, len(in))
	for _, d := range in {
		v, err := s.Fn(d)
		if err != nil {
			return nil, err
		}
		cp := make(Document, len(d)+1)
		for k, val := range d {
			cp[k] = val
		}
		cp[s.Field] = v
		out = append(out, cp)
	}
	return out, nil
}

// Projection copies the value at Path to the output field As.
type Projection struct {
	As   string
	Path string
}

// Project keeps only the listed fields. A missing path yields nil.
type Project struct {
	Fields []Projection
}

func (p Project) apply(_ context.Context, _ Finder, in []Document) ([]Document, error) {
	out := make([]Document, 0, len(in))
	for _, d := range in {
		nd := make(Document, len(p.Fields))
		for _, f := range p.Fields {
			v, _ := Resolve(d, f.Path)
			nd[f.As] = v
		}
		out = append(out, nd)
	}
	return out, nil
}

// SortKey orders by Field, descending when Desc is set.
type SortKey struct {
	Field string
	Desc  bool
}

// Sort orders documents by Keys, stable for equal keys.
type Sort struct {
	Keys []SortKey
}

func (s Sort) apply(_ context.Context, _ Finder, in []Document) ([]Document, error) {
	out := append([]Document(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		for _, k := range s.Keys {
			a, _ := Resolve(out[i], k.Field)
			b, _ := Resolve(out[j], k.Field)
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out, nil
}

// Limit keeps the first N documents.
type Limit struct {
	N int
}

func (l Limit) apply(_ context.Context, _ Finder, in []Document) ([]Document, error) {
	if l.N < 0 {
		return nil, fmt.Errorf("negative limit %d", l.N)
	}
	if len(in) > l.N {
		in = in[:l.N]
	}
	return in, nil
}
