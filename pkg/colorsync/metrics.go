package colorsync

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation names used as the "op" metric label.
const (
	OpSave    = "save"
	OpRefresh = "refresh"
	OpImport  = "import"
	OpExport  = "export"
)

type metrics struct {
	rows     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colorsync",
			Name:      "rows_total",
			Help:      "Rows processed by synchronization operations, by outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "colorsync",
			Name:      "operation_duration_seconds",
			Help:      "Duration of synchronization operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg == nil {
		return m
	}
	m.rows = register(reg, m.rows)
	m.duration = register(reg, m.duration)
	return m
}

// register registers c, reusing an identical collector that is already
// registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) add(op, outcome string, n int) {
	if n > 0 {
		m.rows.WithLabelValues(op, outcome).Add(float64(n))
	}
}

func (m *metrics) observe(op string, start time.Time) {
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
