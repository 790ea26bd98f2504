package signalsprom_test

import (
	"strings"
	"testing"

	"github.com/delaneyj/tracked/signals"
	"github.com/delaneyj/tracked/signalsprom"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	rs := signals.NewReactiveSystem()
	a := signals.Signal(rs, 1)
	b := signals.Computed(rs, func(oldValue int) int {
		return a.Value() * 2
	})
	signals.Effect1(rs, b, func(int, bool) error { return nil })

	rs.Batch(func() {
		a.SetValue(2)
	})

	reg := prometheus.NewRegistry()
	c := signalsprom.NewCollector(rs, prometheus.Labels{"system": "test"})
	require.NoError(t, reg.Register(c))
	assert.Equal(t, 5, testutil.CollectAndCount(c))

	expected := `
# HELP signals_batches_total Batches started.
# TYPE signals_batches_total counter
signals_batches_total{system="test"} 1
# HELP signals_effect_runs_total Effect callbacks invoked, including first runs.
# TYPE signals_effect_runs_total counter
signals_effect_runs_total{system="test"} 2
# HELP signals_live_nodes Trackers currently allocated.
# TYPE signals_live_nodes gauge
signals_live_nodes{system="test"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"signals_batches_total", "signals_effect_runs_total", "signals_live_nodes"))

	b.Dispose()
	released := `
# HELP signals_released_nodes_total Trackers released by Dispose or weak cleanup.
# TYPE signals_released_nodes_total counter
signals_released_nodes_total{system="test"} 1
# HELP signals_live_nodes Trackers currently allocated.
# TYPE signals_live_nodes gauge
signals_live_nodes{system="test"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(released),
		"signals_released_nodes_total", "signals_live_nodes"))
}
