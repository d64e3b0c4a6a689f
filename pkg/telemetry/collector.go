// Package telemetry exports node processing statistics to Prometheus.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/graphnode-go/graphnode/pkg/nullsink"
)

// SinkCollector exposes a null sink's counters as Prometheus metrics. It
// reads the node's atomic statistics on scrape, so collection never
// interferes with the real-time path.
type SinkCollector struct {
	sink    *nullsink.Sink
	frames  *prometheus.Desc
	buffers *prometheus.Desc
}

var _ prometheus.Collector = (*SinkCollector)(nil)

// NewSinkCollector creates a collector labeled with the node's instance
// ID.
func NewSinkCollector(sink *nullsink.Sink) *SinkCollector {
	labels := prometheus.Labels{"node_id": sink.ID()}
	return &SinkCollector{
		sink: sink,
		frames: prometheus.NewDesc(
			"graphnode_sink_frames_total",
			"Total audio frames consumed and discarded by the sink",
			nil, labels,
		),
		buffers: prometheus.NewDesc(
			"graphnode_sink_buffers_total",
			"Total buffers consumed and discarded by the sink",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SinkCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.frames
	ch <- c.buffers
}

// Collect implements prometheus.Collector.
func (c *SinkCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.sink.Stats()
	ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(stats.Frames))
	ch <- prometheus.MustNewConstMetric(c.buffers, prometheus.CounterValue, float64(stats.Buffers))
}
