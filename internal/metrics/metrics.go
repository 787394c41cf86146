// Package metrics exposes the library's internal counters through the default
// Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spankit"

var (
	SpansStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "spans_started_total",
		Help:      "Spans created, including children and continued traces.",
	})

	SpansFinished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "spans_finished_total",
		Help:      "Spans that reached their terminal state.",
	})

	SpansDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "spans_dropped_total",
		Help:      "Spans refused by a recorder already at capacity.",
	})

	TransactionsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_captured_total",
		Help:      "Transaction events delivered to the configured sink.",
	})

	TransactionsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_dropped_total",
		Help:      "Transaction events discarded for lack of a sampling decision.",
	})

	CaptureErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capture_errors_total",
		Help:      "Sink deliveries that returned an error.",
	})
)
