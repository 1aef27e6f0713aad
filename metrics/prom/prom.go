package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/memocache/registry"
	"github.com/IvanBrykalov/memocache/store"
)

// Adapter implements registry.Metrics and exports Prometheus counters/gauges
// labeled by cache name.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
	evicts  *prometheus.CounterVec
	sizeEnt *prometheus.GaugeVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "hits_total",
				Help:        "Cache hits",
				ConstLabels: constLabels,
			},
			[]string{"cache"},
		),
		misses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "misses_total",
				Help:        "Cache misses",
				ConstLabels: constLabels,
			},
			[]string{"cache"},
		),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Cache evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"cache", "reason"},
		),
		sizeEnt: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "size_entries",
				Help:        "Number of resident entries",
				ConstLabels: constLabels,
			},
			[]string{"cache"},
		),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.sizeEnt)
	return a
}

// Hit increments the hit counter of cache.
func (a *Adapter) Hit(cache string) { a.hits.WithLabelValues(cache).Inc() }

// Miss increments the miss counter of cache.
func (a *Adapter) Miss(cache string) { a.misses.WithLabelValues(cache).Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(cache string, r store.EvictReason) {
	a.evicts.WithLabelValues(cache, reason(r)).Inc()
}

// Size updates the resident entries gauge.
func (a *Adapter) Size(cache string, entries int) {
	a.sizeEnt.WithLabelValues(cache).Set(float64(entries))
}

// reason maps EvictReason to a stable label value.
func reason(r store.EvictReason) string {
	switch r {
	case store.EvictTTL, store.EvictCapacity:
		return r.String()
	default:
		return "policy"
	}
}

// Compile-time check: ensure Adapter implements registry.Metrics.
var _ registry.Metrics = (*Adapter)(nil)
