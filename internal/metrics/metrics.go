// Package metrics counts import activity in a per-run Prometheus registry
// that can be dumped in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "arrears"

// Skip reasons used as the "reason" label.
const (
	ReasonMalformed = "malformed"
	ReasonEmptyKey  = "empty_key"
	ReasonBalance   = "balance_mismatch"
	ReasonPeriod    = "bad_period"
)

// Recorder holds the counters of one run. A nil *Recorder records nothing.
type Recorder struct {
	reg *prometheus.Registry

	rowsRead     prometheus.Counter
	rowsImported prometheus.Counter
	rowsSkipped  *prometheus.CounterVec
	accounts     prometheus.Counter
	cases        *prometheus.CounterVec
	files        *prometheus.CounterVec
	fileDuration prometheus.Histogram
}

// NewRecorder registers a fresh set of counters.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		rowsRead: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_read_total",
			Help:      "Data rows read from input files.",
		}),
		rowsImported: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_imported_total",
			Help:      "Rows persisted as period balances.",
		}),
		rowsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_skipped_total",
			Help:      "Rows skipped, by reason.",
		}, []string{"reason"}),
		accounts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "accounts_created_total",
			Help:      "Accounts created on first sight of their key.",
		}),
		cases: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cases",
			Name:      "derived_total",
			Help:      "Case derivations, by outcome.",
		}, []string{"outcome"}),
		files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "files_total",
			Help:      "Files processed, by result.",
		}, []string{"result"}),
		fileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "file_duration_seconds",
			Help:      "Time spent importing one file.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
	}
}

func (r *Recorder) RowRead() {
	if r != nil {
		r.rowsRead.Inc()
	}
}

func (r *Recorder) RowImported() {
	if r != nil {
		r.rowsImported.Inc()
	}
}

func (r *Recorder) RowSkipped(reason string) {
	if r != nil {
		r.rowsSkipped.WithLabelValues(reason).Inc()
	}
}

func (r *Recorder) AccountCreated() {
	if r != nil {
		r.accounts.Inc()
	}
}

// CaseDerived counts a case outcome ("created", "refreshed", "skipped").
func (r *Recorder) CaseDerived(outcome string) {
	if r != nil {
		r.cases.WithLabelValues(outcome).Inc()
	}
}

// FileDone counts a finished file. ok is false for file-fatal failures.
func (r *Recorder) FileDone(elapsed time.Duration, ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	r.files.WithLabelValues(result).Inc()
	r.fileDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes the counters to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
