package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the audit interception layer.
type Metrics struct {
	EntriesWritten  *prometheus.CounterVec
	JournalFailures prometheus.Counter
	SnapshotMisses  prometheus.Counter
}

// New creates and registers all audit metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		EntriesWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolar_audit_entries_written_total",
			Help: "Audit journal entries written, partitioned by action",
		}, []string{"action"}),
		JournalFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escolar_audit_journal_failures_total",
			Help: "Journal writes that failed after a committed business mutation",
		}),
		SnapshotMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escolar_audit_snapshot_misses_total",
			Help: "Update/delete interceptions where no before-state record was found",
		}),
	}
}

// IncrementEntriesWritten records one journal write for the given action.
func (m *Metrics) IncrementEntriesWritten(action string) {
	m.EntriesWritten.WithLabelValues(action).Inc()
}
