package store

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Evict(EvictReason) {}
func (NoopMetrics) Size(entries int)  {}

var _ Metrics = NoopMetrics{}
