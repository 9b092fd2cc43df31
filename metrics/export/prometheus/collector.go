package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	cookiegate "github.com/formbridge/cookiegate"
	"github.com/formbridge/cookiegate/metrics/export/internaldefs"
)

// Collector adapts cookiegate metric snapshots into a client_golang
// [prometheus.Collector] for registry-based deployments.
//
//	Docs: docs/metrics.md
type Collector struct {
	source         metricsSource
	counterDescs   []*prometheus.Desc
	histogramDescs []*prometheus.Desc
	droppedDesc    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector reading from the given [cookiegate.Engine].
//
//	Docs: docs/metrics.md
func NewCollector(engine *cookiegate.Engine) *Collector {
	return NewCollectorFromSource(engine)
}

// NewCollectorFromSource creates a Collector from a custom metrics source.
//
//	Docs: docs/metrics.md
func NewCollectorFromSource(source metricsSource) *Collector {
	c := &Collector{
		source:         source,
		counterDescs:   make([]*prometheus.Desc, 0, len(internaldefs.CounterDefs)),
		histogramDescs: make([]*prometheus.Desc, 0, len(internaldefs.HistogramDefs)),
		droppedDesc: prometheus.NewDesc(
			"cookiegate_audit_dropped_total",
			"Dropped audit events due to dispatcher backpressure.",
			nil, nil,
		),
	}

	for _, def := range internaldefs.CounterDefs {
		c.counterDescs = append(c.counterDescs, prometheus.NewDesc(def.Name, def.Help, nil, nil))
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histogramDescs = append(c.histogramDescs, prometheus.NewDesc(def.Name, def.Help, nil, nil))
	}

	return c
}

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.counterDescs {
		ch <- desc
	}
	for _, desc := range c.histogramDescs {
		ch <- desc
	}
	ch <- c.droppedDesc
}

// Collect implements [prometheus.Collector].
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()

	for i, def := range internaldefs.CounterDefs {
		ch <- prometheus.MustNewConstMetric(
			c.counterDescs[i],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.ID]),
		)
	}

	for i, def := range internaldefs.HistogramDefs {
		nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
		cumulative := internaldefs.CumulativeBuckets(nonCumulative)

		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for j, bound := range internaldefs.HistogramUpperBounds {
			buckets[bound] = cumulative[j]
		}
		count := cumulative[len(cumulative)-1]

		// Sum is not tracked by core snapshots.
		ch <- prometheus.MustNewConstHistogram(c.histogramDescs[i], count, 0, buckets)
	}

	ch <- prometheus.MustNewConstMetric(
		c.droppedDesc,
		prometheus.CounterValue,
		float64(c.source.AuditDropped()),
	)
}
