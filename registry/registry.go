// Package registry keeps the process's named caches. Each cache pairs one
// store with one mutex and one statistics object, created lazily on first
// access to a name whose configuration is enabled.
//
// A Registry is constructed explicitly and passed to its consumers; running
// one per process is a deployment convention, not something this package
// enforces.
package registry

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/IvanBrykalov/memocache/config"
	"github.com/IvanBrykalov/memocache/internal/singleflight"
	"github.com/IvanBrykalov/memocache/store"
)

var (
	// ErrDisabled means the cache is configured off; callers bypass it.
	ErrDisabled = errors.New("registry: cache disabled")
	// ErrNotFound means no cache has been instantiated under the name.
	ErrNotFound = errors.New("registry: cache not found")
)

// Source supplies the resolved config of a cache name.
// *config.Resolver implements it.
type Source interface {
	Get(name string) config.CacheConfig
}

// Cache is one named cache. Its mutex is the only gate for mutating the
// store and the statistics together.
type Cache struct {
	name  string
	cfg   config.CacheConfig
	mu    sync.Mutex
	store *store.Store[string, any]
	stats *Stats
	met   Metrics
}

// Name returns the cache name.
func (c *Cache) Name() string { return c.name }

// Config returns the config the cache was built with.
func (c *Cache) Config() config.CacheConfig { return c.cfg }

// Lock returns the per-cache mutex.
func (c *Cache) Lock() *sync.Mutex { return &c.mu }

// Store returns the underlying store. Callers coordinating multi-step
// read/modify sequences should hold Lock() around them.
func (c *Cache) Store() *store.Store[string, any] { return c.store }

// Stats returns the cache's hit/miss counters.
func (c *Cache) Stats() *Stats { return c.stats }

// RecordHit counts a hit.
func (c *Cache) RecordHit() {
	c.stats.RecordHit()
	c.met.Hit(c.name)
}

// RecordMiss counts a miss.
func (c *Cache) RecordMiss() {
	c.stats.RecordMiss()
	c.met.Miss(c.name)
}

// Registry maps cache names to caches.
type Registry struct {
	src     Source
	log     *slog.Logger
	metrics Metrics
	clock   store.Clock

	mu     sync.RWMutex
	caches map[string]*Cache

	// construction is single-flighted per name so that concurrent first
	// accesses never build two stores for the same cache.
	sf singleflight.Group[string, *Cache]
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option { return func(r *Registry) { r.log = l } }

// WithMetrics plugs an observability backend (default NoopMetrics).
func WithMetrics(m Metrics) Option { return func(r *Registry) { r.metrics = m } }

// WithClock overrides the time source of stores and statistics (tests).
func WithClock(c store.Clock) Option { return func(r *Registry) { r.clock = c } }

// New returns an empty registry reading cache configs from src.
func New(src Source, opts ...Option) *Registry {
	r := &Registry{
		src:     src,
		log:     slog.Default(),
		metrics: NoopMetrics{},
		caches:  make(map[string]*Cache),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Enabled reports whether name is currently configured on.
func (r *Registry) Enabled(name string) bool { return r.src.Get(name).Enabled }

// Cache returns the cache for name, creating it on first access.
// It returns ErrDisabled (and creates nothing) when the name is configured
// off, and a construction error when the config cannot produce a store.
func (r *Registry) Cache(name string) (*Cache, error) {
	if c, ok := r.lookup(name); ok {
		return c, nil
	}

	cfg := r.src.Get(name)
	if !cfg.Enabled {
		return nil, errors.Wrapf(ErrDisabled, "%q", name)
	}

	c, _, err := r.sf.Do(name, func() (*Cache, error) {
		// A flight that finished just before ours may have built it.
		if c, ok := r.lookup(name); ok {
			return c, nil
		}
		c, err := r.build(name, cfg)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.caches[name] = c
		r.mu.Unlock()
		return c, nil
	})
	return c, err
}

// Store returns the store of name, creating the cache if needed.
func (r *Registry) Store(name string) (*store.Store[string, any], error) {
	c, err := r.Cache(name)
	if err != nil {
		return nil, err
	}
	return c.store, nil
}

// Lock returns the mutex of name, creating the cache if needed.
func (r *Registry) Lock(name string) (*sync.Mutex, error) {
	c, err := r.Cache(name)
	if err != nil {
		return nil, err
	}
	return &c.mu, nil
}

// RecordHit counts a hit for name; a no-op if the cache does not exist.
func (r *Registry) RecordHit(name string) {
	if c, ok := r.lookup(name); ok {
		c.RecordHit()
	}
}

// RecordMiss counts a miss for name; a no-op if the cache does not exist.
func (r *Registry) RecordMiss(name string) {
	if c, ok := r.lookup(name); ok {
		c.RecordMiss()
	}
}

// Stats returns a snapshot of name's statistics, or ErrNotFound.
func (r *Registry) Stats(name string) (Snapshot, error) {
	c, ok := r.lookup(name)
	if !ok {
		return Snapshot{}, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return r.snapshot(c), nil
}

// AllStats returns a snapshot for every instantiated cache.
func (r *Registry) AllStats() map[string]Snapshot {
	caches := r.list()
	out := make(map[string]Snapshot, len(caches))
	for _, c := range caches {
		out[c.name] = r.snapshot(c)
	}
	return out
}

// Names returns the instantiated cache names, sorted.
func (r *Registry) Names() []string {
	caches := r.list()
	out := make([]string, len(caches))
	for i, c := range caches {
		out[i] = c.name
	}
	return out
}

// -------------------- internals --------------------

func (r *Registry) lookup(name string) (*Cache, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caches[name]
	return c, ok
}

// list returns the instantiated caches sorted by name.
func (r *Registry) list() []*Cache {
	r.mu.RLock()
	out := make([]*Cache, 0, len(r.caches))
	for _, c := range r.caches {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (r *Registry) build(name string, cfg config.CacheConfig) (*Cache, error) {
	opt := cfg.StoreOptions()
	opt.Clock = r.clock
	opt.Metrics = boundMetrics{name: name, m: r.metrics}

	s, err := store.New(opt)
	if err != nil {
		return nil, errors.Wrapf(err, "build cache %q", name)
	}

	attrs := []any{"name", name, "kind", cfg.Kind, "capacity", cfg.Capacity}
	if cfg.Kind == store.KindTTL {
		attrs = append(attrs, "ttl", cfg.TTL())
	}
	r.log.Info("cache created", attrs...)

	return &Cache{
		name:  name,
		cfg:   cfg,
		store: s,
		stats: newStats(r.now),
		met:   r.metrics,
	}, nil
}

func (r *Registry) snapshot(c *Cache) Snapshot {
	c.mu.Lock()
	entries := c.store.Len()
	c.mu.Unlock()

	snap := c.stats.Snapshot()
	snap.Entries = entries
	snap.Kind = c.cfg.Kind
	snap.Capacity = c.cfg.Capacity
	return snap
}

func (r *Registry) now() time.Time {
	if r.clock != nil {
		return time.Unix(0, r.clock.NowUnixNano())
	}
	return time.Now()
}
