package prom

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/memocache/config"
	"github.com/IvanBrykalov/memocache/registry"
	"github.com/IvanBrykalov/memocache/store"
)

func TestAdapter_Counters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	a := New(reg, "memocache", "test", prometheus.Labels{"app": "unit"})

	a.Hit("card_list")
	a.Hit("card_list")
	a.Miss("card_list")
	a.Miss("order_buttons")
	a.Evict("card_list", store.EvictTTL)
	a.Evict("card_list", store.EvictCapacity)
	a.Evict("card_list", store.EvictCapacity)
	a.Size("card_list", 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(a.hits.WithLabelValues("card_list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.misses.WithLabelValues("card_list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.misses.WithLabelValues("order_buttons")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.evicts.WithLabelValues("card_list", "ttl")))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.evicts.WithLabelValues("card_list", "capacity")))
	assert.Equal(t, 7.0, testutil.ToFloat64(a.sizeEnt.WithLabelValues("card_list")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestAdapter_WiredIntoRegistry(t *testing.T) {
	preg := prometheus.NewRegistry()
	a := New(preg, "memocache", "", nil)

	src, err := config.New(
		config.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		config.WithDefaults(map[string]config.CacheConfig{
			"lru": {Kind: store.KindLRU, Capacity: 1, Enabled: true},
		}),
	)
	require.NoError(t, err)
	r := registry.New(src, registry.WithMetrics(a), registry.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	s, err := r.Store("lru")
	require.NoError(t, err)
	s.Set("a", 1)
	s.Set("b", 2) // evicts a
	r.RecordMiss("lru")
	r.RecordHit("lru")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.evicts.WithLabelValues("lru", "capacity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.sizeEnt.WithLabelValues("lru")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.hits.WithLabelValues("lru")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.misses.WithLabelValues("lru")))
}
