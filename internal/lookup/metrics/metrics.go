package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	QueryLatency *prometheus.HistogramVec
	NotFound     *prometheus.CounterVec
}

// New registers the lookup metrics with reg, or the default registerer when
// reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		QueryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amlgen_lookup_query_duration_seconds",
			Help:    "Duration of lookup queries",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"query"}),
		NotFound: f.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgen_lookup_not_found_total",
			Help: "Lookups for a user or alert that does not exist",
		}, []string{"query"}),
	}
}

func (m *Metrics) ObserveQuery(query string, start time.Time) {
	m.QueryLatency.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementNotFound(query string) {
	m.NotFound.WithLabelValues(query).Inc()
}
