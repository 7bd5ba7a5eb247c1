// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the benchmark pipeline.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems live in subpackages (prompush, datadog).
//
// Stages report through RecordStep, loaders through RecordRows and the
// benchmark harness through RecordQuery.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal            = "ecombench_step_total"
	StepDurationSeconds  = "ecombench_step_duration_seconds"
	RowsTotal            = "ecombench_rows_total"
	QueryTotal           = "ecombench_query_total"
	QueryDurationSeconds = "ecombench_query_duration_seconds"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStep is a convenience for the common pattern:
// measure latency + success/failure per pipeline step.
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status(err),
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows counts rows written to a table or collection.
func RecordRows(job, target string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":    job,
		"target": target,
	})
}

// RecordQuery records one timed benchmark query against a backend.
func RecordQuery(job, query, backendName string, err error, d time.Duration) {
	lbls := Labels{
		"job":     job,
		"query":   query,
		"backend": backendName,
		"status":  status(err),
	}
	backend.IncCounter(QueryTotal, 1, lbls)
	backend.ObserveHistogram(QueryDurationSeconds, d.Seconds(), lbls)
}
