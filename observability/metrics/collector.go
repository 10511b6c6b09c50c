package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorageStats is satisfied by every kvstore backend (memory, boltstore,
// badgerstore), each of which reports its footprint in its own units:
// memory sums live key/value bytes, boltstore stats its file, badgerstore
// sums LSM tree plus value log.
type StorageStats interface {
	Stats() (bytesOnDisk int64, err error)
}

// StorageCollector is a prometheus.Collector that reports one backend's
// size on every scrape, rather than requiring a caller to poll Stats and
// push it through UpdateStorageBytes.
type StorageCollector struct {
	backend string
	stats   StorageStats

	sizeDesc *prometheus.Desc
}

// NewStorageCollector builds a collector for a backend identified by name
// (e.g. "memory", "bolt", "badger") for use in metric labels.
func NewStorageCollector(backend string, stats StorageStats) *StorageCollector {
	return &StorageCollector{
		backend: backend,
		stats:   stats,
		sizeDesc: prometheus.NewDesc(
			"recordstore_storage_backend_bytes",
			"Backend storage footprint in bytes",
			[]string{"backend"}, nil,
		),
	}
}

// Describe sends the super-set of all possible descriptors.
func (c *StorageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sizeDesc
}

// Collect is called by the Prometheus registry when collecting metrics.
func (c *StorageCollector) Collect(ch chan<- prometheus.Metric) {
	if c.stats == nil {
		return
	}
	size, err := c.stats.Stats()
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.sizeDesc, prometheus.GaugeValue, float64(size), c.backend)
}

// RegisterStorageCollector registers a StorageCollector for backend with
// the default Prometheus registry.
func RegisterStorageCollector(backend string, stats StorageStats) {
	prometheus.MustRegister(NewStorageCollector(backend, stats))
}
