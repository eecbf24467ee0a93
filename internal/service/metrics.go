package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts pipeline outcomes. A nil *Metrics records nothing.
type Metrics struct {
	ingestions *prometheus.CounterVec
	exports    *prometheus.CounterVec
	extraction prometheus.Histogram
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ingestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoice_ingestions_total",
				Help: "Invoice uploads by terminal outcome and failing stage.",
			},
			[]string{"outcome", "stage"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "record_exports_total",
				Help: "Record exports by format and outcome.",
			},
			[]string{"format", "outcome"},
		),
		extraction: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "extraction_duration_seconds",
				Help:    "Latency of calls to the extraction service.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
	}
	for _, c := range []prometheus.Collector{m.ingestions, m.exports, m.extraction} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ingestion(outcome, stage string) {
	if m == nil {
		return
	}
	m.ingestions.WithLabelValues(outcome, stage).Inc()
}

func (m *Metrics) export(format, outcome string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format, outcome).Inc()
}

func (m *Metrics) extractionSeconds(s float64) {
	if m == nil {
		return
	}
	m.extraction.Observe(s)
}
