package duck

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	resultOK     = "ok"
	resultFailed = "failed"
)

// metrics holds the cache counters. Without a registerer they still count
// but are not exported anywhere.
//
// Metrics:
//   - duck_resolutions_total{result} - plans computed, per outcome
//   - duck_syntheses_total{result} - factories built, per outcome
//   - duck_cache_hits_total - factory lookups served by an existing entry
//   - duck_cache_misses_total - factory lookups creating an entry
//   - duck_proxies_created_total - shape values handed out
type metrics struct {
	resolutions    *prometheus.CounterVec
	syntheses      *prometheus.CounterVec
	hits           prometheus.Counter
	misses         prometheus.Counter
	proxiesCreated prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duck_resolutions_total",
				Help: "Total number of shape/target pairs resolved",
			},
			[]string{"result"},
		),
		syntheses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duck_syntheses_total",
				Help: "Total number of adapter factories synthesized",
			},
			[]string{"result"},
		),
		hits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "duck_cache_hits_total",
				Help: "Total number of factory lookups served from the cache",
			},
		),
		misses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "duck_cache_misses_total",
				Help: "Total number of factory lookups that created a cache entry",
			},
		),
		proxiesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "duck_proxies_created_total",
				Help: "Total number of proxy and copy values created",
			},
		),
	}
}

func resultLabel(ok bool) string {
	if ok {
		return resultOK
	}

	return resultFailed
}
