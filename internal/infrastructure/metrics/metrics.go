// Package metrics exposes Prometheus counters for ledger operations and
// record writes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"maintledger/internal/core/apperror"
	"maintledger/internal/domain/ledger"
	"maintledger/internal/infrastructure/persist"
)

const namespace = "maintledger"

// Metrics implements persist.Observer and ledger.OperationObserver.
type Metrics struct {
	registry *prometheus.Registry

	operations    *prometheus.CounterVec
	writes        *prometheus.CounterVec
	writeDuration *prometheus.HistogramVec
	coalesced     *prometheus.CounterVec
	verifyRuns    *prometheus.CounterVec
}

var (
	_ persist.Observer         = (*Metrics)(nil)
	_ ledger.OperationObserver = (*Metrics)(nil)
)

// New creates the collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Ledger operations by operation and outcome code.",
		}, []string{"operation", "outcome"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Record writes to the external store by table and result.",
		}, []string{"table", "result"}),
		writeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_write_duration_seconds",
			Help:      "Duration of record writes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table"}),
		coalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_coalesced_total",
			Help:      "Writes superseded by a newer write to the same record.",
		}, []string{"table"}),
		verifyRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kardex_verifications_total",
			Help:      "Kardex replay verifications by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.operations, m.writes, m.writeDuration, m.coalesced, m.verifyRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveOperation(op string, err error) {
	m.operations.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) ObserveWrite(table string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.writes.WithLabelValues(table, result).Inc()
	m.writeDuration.WithLabelValues(table).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCoalesced(table string) {
	m.coalesced.WithLabelValues(table).Inc()
}

// ObserveVerification counts one replay verification run.
func (m *Metrics) ObserveVerification(ok bool) {
	result := "ok"
	if !ok {
		result = "mismatch"
	}
	m.verifyRuns.WithLabelValues(result).Inc()
}

// ConnCounter reports pool connections as acquired, idle and total.
type ConnCounter func() (acquired, idle, total int32)

// WatchPool exports connection pool gauges. Call it once per registry.
func (m *Metrics) WatchPool(conns ConnCounter) {
	gauge := func(name, help string, pick func(a, i, t int32) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(pick(conns()))
		})
	}
	m.registry.MustRegister(
		gauge("acquired_conns", "Connections currently in use.", func(a, _, _ int32) int32 { return a }),
		gauge("idle_conns", "Idle connections.", func(_, i, _ int32) int32 { return i }),
		gauge("total_conns", "Open connections.", func(_, _, t int32) int32 { return t }),
	)
}

// outcome maps an error to a low-cardinality label.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Code
	}
	return apperror.CodeInternal
}
