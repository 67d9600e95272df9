package arena

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports arena metrics to Prometheus. Scrapes happen on other
// goroutines, so the source should be a SafeArena unless the caller
// serializes scrapes with allocation some other way.
type Collector struct {
	src MetricsSource

	occupied  *prometheus.Desc
	available *prometheus.Desc
	reserved  *prometheus.Desc
	capacity  *prometheus.Desc
	peak      *prometheus.Desc
	allocs    *prometheus.Desc
	scratches *prometheus.Desc
}

// NewCollector returns a Collector reporting src under namespace.
// constLabels, if non-nil, are attached to every series.
func NewCollector(namespace string, src MetricsSource, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "arena", name), help, nil, constLabels)
	}
	return &Collector{
		src:       src,
		occupied:  desc("occupied_bytes", "Bytes below the allocation cursor."),
		available: desc("available_bytes", "Bytes still allocatable."),
		reserved:  desc("reserved_bytes", "Bytes held by live scratch arenas."),
		capacity:  desc("capacity_bytes", "Size of the arena buffer."),
		peak:      desc("peak_bytes", "High-water mark of occupied bytes."),
		allocs:    desc("allocations_total", "Successful allocations."),
		scratches: desc("scratch_arenas", "Live scratch arenas."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.occupied
	ch <- c.available
	ch <- c.reserved
	ch <- c.capacity
	ch <- c.peak
	ch <- c.allocs
	ch <- c.scratches
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.Metrics()
	ch <- prometheus.MustNewConstMetric(c.occupied, prometheus.GaugeValue, float64(m.Occupied))
	ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, float64(m.Available))
	ch <- prometheus.MustNewConstMetric(c.reserved, prometheus.GaugeValue, float64(m.Reserved))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(m.Capacity))
	ch <- prometheus.MustNewConstMetric(c.peak, prometheus.GaugeValue, float64(m.Peak))
	ch <- prometheus.MustNewConstMetric(c.allocs, prometheus.CounterValue, float64(m.Allocs))
	ch <- prometheus.MustNewConstMetric(c.scratches, prometheus.GaugeValue, float64(m.Scratches))
}
