package inventory

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus metrics for ledger operations
// 台帳操作のPrometheusメトリクス
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the ledger metrics and registers them with reg
// 台帳メトリクスを作成して登録
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medledger",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Number of ledger entry operations by operation, entry type and result.",
		}, []string{"operation", "type", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medledger",
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger entry operations including the store transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe records one operation. A nil receiver is a no-op.
func (m *Metrics) observe(operation string, entryType TransactionType, start time.Time, err error) {
	if m == nil {
		return
	}
	typ := string(entryType)
	if typ == "" {
		typ = "unknown"
	}
	m.operations.WithLabelValues(operation, typ, resultLabel(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// resultLabel classifies err into a low-cardinality label value
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrInvalidTransactionType), errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrLotNotFound), errors.Is(err, ErrEntryNotFound):
		return "not_found"
	case errors.Is(err, ErrVersionMismatch):
		return "conflict"
	default:
		return "error"
	}
}
