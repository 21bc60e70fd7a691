package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for generation runs.
type Metrics struct {
	UsersGenerated        prometheus.Counter
	PEPsGenerated         prometheus.Counter
	TransactionsGenerated *prometheus.CounterVec
	AlertsGenerated       *prometheus.CounterVec
	Runs                  *prometheus.CounterVec

	// Performance metrics
	StageLatency *prometheus.HistogramVec
	SinkLatency  *prometheus.HistogramVec
}

// New registers generation collectors with reg. A nil reg registers with the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		UsersGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "amlgen_users_generated_total",
			Help: "Total number of synthetic users generated",
		}),
		PEPsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "amlgen_peps_generated_total",
			Help: "Total number of generated users flagged as politically exposed",
		}),
		TransactionsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgen_transactions_generated_total",
			Help: "Total number of transactions generated, labeled by producing stage",
		}, []string{"stage"}),
		AlertsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgen_alerts_generated_total",
			Help: "Total number of alerts generated, labeled by stage and severity",
		}, []string{"stage", "severity"}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgen_runs_total",
			Help: "Total number of generation runs, labeled by outcome code",
		}, []string{"outcome"}),

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amlgen_stage_latency_seconds",
			Help:    "Latency of generation stages in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"stage"}),
		SinkLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amlgen_sink_write_latency_seconds",
			Help:    "Latency of dataset sink writes in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"sink"}),
	}
}

func (m *Metrics) ObserveUsers(total, peps int) {
	m.UsersGenerated.Add(float64(total))
	m.PEPsGenerated.Add(float64(peps))
}

func (m *Metrics) ObserveTransactions(stage string, n int) {
	m.TransactionsGenerated.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) IncrementAlerts(stage, severity string) {
	m.AlertsGenerated.WithLabelValues(stage, severity).Inc()
}

// IncrementRuns counts a finished run. outcome is "ok" or an error code.
func (m *Metrics) IncrementRuns(outcome string) {
	m.Runs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveSinkLatency(sink string, d time.Duration) {
	m.SinkLatency.WithLabelValues(sink).Observe(d.Seconds())
}
