package status

import (
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports numeric registry metrics as Prometheus gauges.
// Metric names are derived from keys at scrape time, so it is an unchecked collector
type Collector struct {
	registry  *Registry
	namespace string
}

// NewCollector wraps reg; namespace prefixes every exported name
func NewCollector(reg *Registry, namespace string) *Collector {
	return &Collector{registry: reg, namespace: namespace}
}

// Describe sends nothing, which registers the collector as unchecked
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect emits one gauge per bool, int and float metric
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.registry.Bools.Range(func(key string, v *atomic.Bool) {
		val := 0.0
		if v.Load() {
			val = 1
		}
		c.emit(ch, key, val)
	})
	c.registry.Ints.Range(func(key string, v *atomic.Int64) {
		c.emit(ch, key, float64(v.Load()))
	})
	c.registry.Floats.Range(func(key string, v *AtomicFloat) {
		c.emit(ch, key, v.Get())
	})
}

func (c *Collector) emit(ch chan<- prometheus.Metric, key string, val float64) {
	desc := prometheus.NewDesc(c.MetricName(key), "symreg run metric "+key, nil, nil)
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, val)
}

// MetricName maps a registry key to a Prometheus metric name
func (c *Collector) MetricName(key string) string {
	name := strings.NewReplacer(".", "_", "-", "_").Replace(key)
	return prometheus.BuildFQName(c.namespace, "", name)
}
