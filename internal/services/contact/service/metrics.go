package service

import (
	"contactgate/internal/services/contact/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	submissions *prometheus.CounterVec
	delivery    *prometheus.HistogramVec
}

// newMetrics registers on reg; a nil reg keeps the collectors private
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactgate",
			Name:      "submissions_total",
			Help:      "Contact submissions by outcome.",
		}, []string{"outcome"}),
		delivery: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contactgate",
			Name:      "delivery_seconds",
			Help:      "Time spent handing a message to the delivery channel.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"channel"}),
	}
}

func (m *metrics) count(o domain.Outcome) {
	m.submissions.WithLabelValues(string(o)).Inc()
}
