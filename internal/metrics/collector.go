// internal/metrics/collector.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hydra_snapshot"

// Collector holds the metrics of one snapshot run in its own registry
type Collector struct {
	registry     *prometheus.Registry
	rpcCalls     *prometheus.CounterVec
	rpcLatency   *prometheus.HistogramVec
	reportRows   *prometheus.GaugeVec
	snapshotInfo *prometheus.GaugeVec
}

// NewCollector creates a collector with every metric registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rpcCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_calls_total",
				Help:      "Total number of JSON-RPC calls made to the node",
			},
			[]string{"method", "status"},
		),
		rpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_latency_seconds",
				Help:      "RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"method"},
		),
		reportRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "report_rows",
				Help:      "Rows written per report",
			},
			[]string{"report"},
		),
		snapshotInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "block_height",
				Help:      "Block the snapshot was taken at",
			},
			[]string{"hash"},
		),
	}

	c.registry.MustRegister(c.rpcCalls, c.rpcLatency, c.reportRows, c.snapshotInfo)
	return c
}

// Registry returns the registry the metrics are registered in
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRPC records one RPC call
func (c *Collector) RecordRPC(method string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.rpcCalls.WithLabelValues(method, status).Inc()
	c.rpcLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// SetReportRows records the row count of a written report
func (c *Collector) SetReportRows(report string, rows int) {
	c.reportRows.WithLabelValues(report).Set(float64(rows))
}

// SetBlock records the pinned block
func (c *Collector) SetBlock(height uint64, hash string) {
	c.snapshotInfo.WithLabelValues(hash).Set(float64(height))
}

// RPCCalls returns the number of RPC calls recorded so far
func (c *Collector) RPCCalls() int {
	families, err := c.registry.Gather()
	if err != nil {
		return 0
	}

	var total float64
	for _, mf := range families {
		if mf.GetName() != namespace+"_rpc_calls_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return int(total)
}

// WriteTextfile writes every metric in the Prometheus text format, for the
// node_exporter textfile collector
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
