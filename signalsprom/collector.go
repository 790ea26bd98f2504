// Package signalsprom exports the counters of a signals.ReactiveSystem to Prometheus.
package signalsprom

import (
	"github.com/delaneyj/tracked/signals"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "signals"

// StatsSource is satisfied by *signals.ReactiveSystem.
type StatsSource interface {
	Stats() signals.Stats
}

type Collector struct {
	src StatsSource

	batches        *prometheus.Desc
	recomputations *prometheus.Desc
	effectRuns     *prometheus.Desc
	released       *prometheus.Desc
	liveNodes      *prometheus.Desc
}

// NewCollector reads src on every scrape. Stats are atomic so scrapes may run on any goroutine.
// constLabels tell several systems in one process apart.
func NewCollector(src StatsSource, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, constLabels)
	}
	return &Collector{
		src:            src,
		batches:        desc("batches_total", "Batches started."),
		recomputations: desc("recomputations_total", "Computed trackers re-evaluated during batch resolution."),
		effectRuns:     desc("effect_runs_total", "Effect callbacks invoked, including first runs."),
		released:       desc("released_nodes_total", "Trackers released by Dispose or weak cleanup."),
		liveNodes:      desc("live_nodes", "Trackers currently allocated."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.batches
	ch <- c.recomputations
	ch <- c.effectRuns
	ch <- c.released
	ch <- c.liveNodes
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.batches, prometheus.CounterValue, float64(s.Batches))
	ch <- prometheus.MustNewConstMetric(c.recomputations, prometheus.CounterValue, float64(s.Recomputations))
	ch <- prometheus.MustNewConstMetric(c.effectRuns, prometheus.CounterValue, float64(s.EffectRuns))
	ch <- prometheus.MustNewConstMetric(c.released, prometheus.CounterValue, float64(s.Released))
	ch <- prometheus.MustNewConstMetric(c.liveNodes, prometheus.GaugeValue, float64(s.LiveNodes))
}
