// Package errkind classifies failures surfaced by the stores, the transform
// engine and the benchmark harness. Callers wrap the underlying error with
// one of the constructors and test the class with errors.Is against the
// exported sentinels.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is a failure class.
type Kind int

const (
	// KindConnection: a store could not be reached or authenticated.
	KindConnection Kind = iota + 1
	// KindQuery: a query or pipeline failed in the store.
	KindQuery
	// KindSchema: an expected field is absent or has an unusable type.
	KindSchema
	// KindPersistence: the ledger or a snapshot could not be written.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection failure"
	case KindQuery:
		return "query execution failure"
	case KindSchema:
		return "schema mismatch"
	case KindPersistence:
		return "persistence failure"
	default:
		return "unknown failure"
	}
}

// Sentinels usable with errors.Is.
var (
	ErrConnection  = &Error{Kind: KindConnection}
	ErrQuery       = &Error{Kind: KindQuery}
	ErrSchema      = &Error{Kind: KindSchema}
	ErrPersistence = &Error{Kind: KindPersistence}
)

// Error carries the failure class, the operation that failed and the target
// (store, collection, table, query or file) it was applied to.
type Error struct {
	Kind   Kind
	Op     string
	Target string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Target != "" {
		if msg != "" {
			msg += " "
		}
		msg += e.Target
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind. It lets callers
// match on the sentinels without caring about Op or Target.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Connection wraps err as a connection failure.
func Connection(op, target string, err error) error {
	return &Error{Kind: KindConnection, Op: op, Target: target, Err: err}
}

// Query wraps err as a query execution failure.
func Query(op, target string, err error) error {
	return &Error{Kind: KindQuery, Op: op, Target: target, Err: err}
}

// Schema wraps err as a schema mismatch.
func Schema(op, target string, err error) error {
	return &Error{Kind: KindSchema, Op: op, Target: target, Err: err}
}

// Persistence wraps err as a persistence failure.
func Persistence(op, target string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Target: target, Err: err}
}

// Of returns the Kind of the first *Error in err's chain, or 0.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
