package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveUsers(100, 4)
	m.ObserveTransactions("background", 1000)
	m.ObserveTransactions("smurfing", 11)
	m.IncrementAlerts("mule_ring", "medium")
	m.IncrementAlerts("mule_ring", "medium")
	m.IncrementRuns("ok")
	m.ObserveStageLatency("users", 3*time.Millisecond)
	m.ObserveSinkLatency("csv", time.Second)

	assert.Equal(t, 100.0, testutil.ToFloat64(m.UsersGenerated))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.PEPsGenerated))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.TransactionsGenerated.WithLabelValues("background")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AlertsGenerated.WithLabelValues("mule_ring", "medium")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageLatency))
}

func TestNewRegistriesAreIndependent(t *testing.T) {
	require.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
