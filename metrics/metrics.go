// Package metrics provides Prometheus instrumentation for the codec and
// catalogue packages: call counts and durations per codec operation, and
// a gauge for catalogue-audit discrepancy counts. Observability is an
// ambient concern the specification's Non-goals never touch, so it is
// carried the way the teacher repo carries it for its own adapters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the registered series. A nil *Collector is not usable;
// construct one with NewCollector before wiring it into a codec or
// catalogue call site.
type Collector struct {
	codecOperations    *prometheus.CounterVec
	codecDuration      *prometheus.HistogramVec
	auditDiscrepancies prometheus.Gauge
	sqlFunctionCalls   *prometheus.CounterVec
}

// NewCollector registers the collector's series under namespace (falling
// back to "gpkggeom" when empty) and returns it.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "gpkggeom"
	}

	return &Collector{
		codecOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "codec_operations_total",
				Help:      "Total number of codec operations, by operation and status",
			},
			[]string{"operation", "status"},
		),

		codecDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "codec_operation_duration_seconds",
				Help:      "Codec operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		auditDiscrepancies: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_audit_discrepancies",
				Help:      "Number of discrepancies found by the last catalog audit",
			},
		),

		sqlFunctionCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sql_function_calls_total",
				Help:      "Total number of SQL-callable geometry function invocations, by function and status",
			},
			[]string{"function", "status"},
		),
	}
}

// ObserveCodecOperation records one codec operation's outcome and
// duration. operation names the codec call site ("wkb.read", "wkt.write",
// "blob.decode", and so on); err is the error the operation returned, if
// any.
func (c *Collector) ObserveCodecOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.codecOperations.WithLabelValues(operation, status).Inc()
	c.codecDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetAuditDiscrepancies records the discrepancy count from the most
// recent catalog.Check or catalog.Audit run.
func (c *Collector) SetAuditDiscrepancies(count int) {
	c.auditDiscrepancies.Set(float64(count))
}

// ObserveSQLFunctionCall records one SQL-callable function invocation
// (spec.md §4.9's accessor/converter/administration bindings).
func (c *Collector) ObserveSQLFunctionCall(function string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.sqlFunctionCalls.WithLabelValues(function, status).Inc()
}

// Timer starts a duration measurement for operation, returning a stop
// function that records the elapsed time and outcome when called; meant
// to be used with defer at the top of an instrumented codec call:
//
//	stop := c.Timer("wkb.read")
//	defer func() { stop(err) }()
func (c *Collector) Timer(operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		c.ObserveCodecOperation(operation, time.Since(start), err)
	}
}
