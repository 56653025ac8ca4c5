// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// LedgerOperations counts orchestrator runs by outcome. result is "ok" or
	// the error kind returned to the caller.
	LedgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contalink_ledger_operations_total",
			Help: "Ledger operations by operation, variant and result",
		},
		[]string{"operation", "variant", "result"},
	)

	// IntegrityFailures counts postcondition failures that point at corrupted data.
	IntegrityFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contalink_ledger_integrity_failures_total",
			Help: "Incomplete transactions and incomplete reversals detected",
		},
		[]string{"code"},
	)

	once sync.Once
)

// Init registers every collector on the default registry. Safe to call more
// than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(HttpRequestsTotal, HttpRequestDuration, LedgerOperations, IntegrityFailures)
	})
}
