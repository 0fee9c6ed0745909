package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the record store controller.
// Tracks operation outcomes, backend latency and optimistic-update rollbacks.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Rollbacks         prometheus.Counter
	Records           prometheus.Gauge
}

// New registers the controller metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ncmr_operations_total",
			Help: "Total number of controller operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ncmr_operation_duration_seconds",
			Help:    "Duration of controller operations including the backend round trip",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		Rollbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "ncmr_optimistic_rollbacks_total",
			Help: "Total number of optimistic updates rolled back after a backend failure",
		}),
		Records: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ncmr_records",
			Help: "Current number of records held in memory",
		}),
	}
}

// ObserveOperation records the outcome and duration of an operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementRollbacks records a restored snapshot.
func (m *Metrics) IncrementRollbacks() {
	m.Rollbacks.Inc()
}

// SetRecords updates the in-memory record gauge.
func (m *Metrics) SetRecords(count int) {
	m.Records.Set(float64(count))
}
