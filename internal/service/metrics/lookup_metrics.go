package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// LookupCache counts cached provider lookups by provider and outcome
	// (hit, miss, error).
	LookupCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finscreen",
			Subsystem: "lookup",
			Name:      "cache_total",
			Help:      "Provider lookups served through the cache",
		},
		[]string{"provider", "outcome"},
	)

	// LookupWait observes time spent waiting for the provider rate limit.
	LookupWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finscreen",
			Subsystem: "lookup",
			Name:      "throttle_wait_seconds",
			Help:      "Time spent waiting for a provider request slot",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider"},
	)
)

// Register adds the lookup collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(LookupCache, LookupWait)
	})
}
