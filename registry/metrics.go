package registry

import "github.com/IvanBrykalov/memocache/store"

// Metrics receives per-cache observability signals.
// A NoopMetrics implementation is used by default; see metrics/prom.
type Metrics interface {
	Hit(cache string)
	Miss(cache string)
	Evict(cache string, reason store.EvictReason)
	Size(cache string, entries int)
}

// NoopMetrics does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit(string)                      {}
func (NoopMetrics) Miss(string)                     {}
func (NoopMetrics) Evict(string, store.EvictReason) {}
func (NoopMetrics) Size(string, int)                {}

var _ Metrics = NoopMetrics{}

// boundMetrics adapts a registry Metrics to one store's store.Metrics.
type boundMetrics struct {
	name string
	m    Metrics
}

func (b boundMetrics) Evict(r store.EvictReason) { b.m.Evict(b.name, r) }
func (b boundMetrics) Size(entries int)          { b.m.Size(b.name, entries) }
