// Package metrics exposes Prometheus counters for the import pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caseimport",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "Data rows seen by the importer, by mapping outcome.",
	}, []string{"outcome"})

	importFiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caseimport",
		Subsystem: "import",
		Name:      "files_total",
		Help:      "Files processed by the importer, by result.",
	}, []string{"result"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "caseimport",
		Subsystem: "import",
		Name:      "file_duration_seconds",
		Help:      "Time spent importing one file.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	duplicateChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caseimport",
		Subsystem: "duplicates",
		Name:      "checks_total",
		Help:      "Duplicate lookups, by whether an exact match was found.",
	}, []string{"result"})

	deleteAuthorizations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caseimport",
		Subsystem: "duplicates",
		Name:      "delete_authorizations_total",
		Help:      "Bulk delete authorization decisions.",
	}, []string{"result"})
)

// Row outcomes
const (
	OutcomeMapped         = "mapped"
	OutcomeBlank          = "blank"
	OutcomeFailed         = "failed"
	OutcomeDuplicateEmail = "duplicate_email"
)

// File results
const (
	FileImported         = "imported"
	FileDecodeFailed     = "decode_failed"
	FileEmailCheckFailed = "email_check_failed"
	FileInsertFailed     = "insert_failed"
	FileEmpty            = "empty"
)

// RecordRow counts one data row by outcome.
func RecordRow(outcome string) {
	importRows.WithLabelValues(outcome).Inc()
}

// RecordRows counts n data rows with the same outcome.
func RecordRows(outcome string, n int) {
	if n > 0 {
		importRows.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordFile counts one processed file and its duration.
func RecordFile(result string, elapsed time.Duration) {
	importFiles.WithLabelValues(result).Inc()
	importDuration.Observe(elapsed.Seconds())
}

// RecordDuplicateCheck counts one duplicate lookup.
func RecordDuplicateCheck(exact bool) {
	result := "none"
	if exact {
		result = "exact"
	}
	duplicateChecks.WithLabelValues(result).Inc()
}

// RecordDeleteAuthorization counts one bulk delete decision.
func RecordDeleteAuthorization(result string) {
	deleteAuthorizations.WithLabelValues(result).Inc()
}
