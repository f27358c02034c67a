package store

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolCollector exports the connection pool statistics of a store handle.
type PoolCollector struct {
	db *sql.DB

	maxOpen           *prometheus.Desc
	open              *prometheus.Desc
	inUse             *prometheus.Desc
	idle              *prometheus.Desc
	waitCount         *prometheus.Desc
	waitDuration      *prometheus.Desc
	maxIdleClosed     *prometheus.Desc
	maxIdleTimeClosed *prometheus.Desc
}

func NewPoolCollector(db *sql.DB) *PoolCollector {
	return &PoolCollector{
		db: db,

		maxOpen: prometheus.NewDesc(
			"rainbow_store_max_open_connections",
			"Maximum number of open connections to the store",
			nil, nil,
		),
		open: prometheus.NewDesc(
			"rainbow_store_open_connections",
			"Number of established connections, both in use and idle",
			nil, nil,
		),
		inUse: prometheus.NewDesc(
			"rainbow_store_in_use_connections",
			"Number of connections currently checked out",
			nil, nil,
		),
		idle: prometheus.NewDesc(
			"rainbow_store_idle_connections",
			"Number of idle connections",
			nil, nil,
		),
		waitCount: prometheus.NewDesc(
			"rainbow_store_wait_count_total",
			"Total number of connections waited for",
			nil, nil,
		),
		waitDuration: prometheus.NewDesc(
			"rainbow_store_wait_duration_seconds_total",
			"Total time blocked waiting for a new connection",
			nil, nil,
		),
		maxIdleClosed: prometheus.NewDesc(
			"rainbow_store_max_idle_closed_total",
			"Total number of connections closed due to the idle pool limit",
			nil, nil,
		),
		maxIdleTimeClosed: prometheus.NewDesc(
			"rainbow_store_max_idle_time_closed_total",
			"Total number of connections closed due to the idle time limit",
			nil, nil,
		),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxOpen
	ch <- c.open
	ch <- c.inUse
	ch <- c.idle
	ch <- c.waitCount
	ch <- c.waitDuration
	ch <- c.maxIdleClosed
	ch <- c.maxIdleTimeClosed
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.db.Stats()

	ch <- prometheus.MustNewConstMetric(c.maxOpen, prometheus.GaugeValue, float64(stats.MaxOpenConnections))
	ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, float64(stats.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(stats.InUse))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(stats.Idle))
	ch <- prometheus.MustNewConstMetric(c.waitCount, prometheus.CounterValue, float64(stats.WaitCount))
	ch <- prometheus.MustNewConstMetric(c.waitDuration, prometheus.CounterValue, stats.WaitDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(c.maxIdleClosed, prometheus.CounterValue, float64(stats.MaxIdleClosed))
	ch <- prometheus.MustNewConstMetric(c.maxIdleTimeClosed, prometheus.CounterValue, float64(stats.MaxIdleTimeClosed))
}
