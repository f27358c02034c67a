package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

var ResolveRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rainbow",
	Subsystem: "resolver",
	Name:      "requests_total",
	Help:      "Resolve requests by result (ok, bad_request, error).",
}, []string{"result"})

var ResolvedDigests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rainbow",
	Subsystem: "resolver",
	Name:      "digests_total",
	Help:      "Digests resolved by result (hit, miss).",
}, []string{"result"})

var CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rainbow",
	Subsystem: "resolver",
	Name:      "cache_lookups_total",
	Help:      "Resolved-digest cache lookups by result (hit, miss).",
}, []string{"result"})

var ResolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "rainbow",
	Subsystem: "resolver",
	Name:      "resolve_duration_seconds",
	Help:      "Time spent resolving one batch.",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
})

var BatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "rainbow",
	Subsystem: "resolver",
	Name:      "batch_size",
	Help:      "Number of digests per resolve batch.",
	Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
})

// RegisterMetrics registers the resolver metrics with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		ResolveRequests,
		ResolvedDigests,
		CacheLookups,
		ResolveDuration,
		BatchSize,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
