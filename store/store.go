package store

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/IvanBrykalov/memocache/policy"
	"github.com/IvanBrykalov/memocache/policy/fifo"
	"github.com/IvanBrykalov/memocache/policy/lru"
)

// Store is a bounded key/value container with a fixed eviction rule.
// All methods are safe for concurrent use by multiple goroutines.
type Store[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu   sync.Mutex
	m    map[K]*node[K, V]
	head *node[K, V] // newest / MRU
	tail *node[K, V] // eviction candidate
	len  int

	kind  Kind
	cap   int
	ttl   int64 // nanoseconds; 0 for LRU
	pol   policy.StorePolicy[K, V]
	opt   Options[K, V]
	clock Clock
}

// New validates opt and constructs the store variant selected by opt.Kind.
// Defaults: nil Metrics => NoopMetrics, nil Clock => monotonic process clock.
func New[K comparable, V any](opt Options[K, V]) (*Store[K, V], error) {
	if opt.Capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "got %d", opt.Capacity)
	}

	var (
		pol policy.Policy[K, V]
		ttl int64
	)
	switch opt.Kind {
	case KindTTL:
		if opt.TTL <= 0 {
			return nil, errors.Wrapf(ErrInvalidTTL, "got %s", opt.TTL)
		}
		pol = fifo.New[K, V]()
		ttl = int64(opt.TTL)
	case KindLRU:
		pol = lru.New[K, V]()
	default:
		return nil, errors.Wrapf(ErrUnsupportedKind, "%q", opt.Kind)
	}

	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	clock := opt.Clock
	if clock == nil {
		clock = monoClock{base: time.Now()}
	}

	s := &Store[K, V]{
		m:     make(map[K]*node[K, V], opt.Capacity),
		kind:  opt.Kind,
		cap:   opt.Capacity,
		ttl:   ttl,
		opt:   opt,
		clock: clock,
	}
	s.pol = pol.New(storeHooks[K, V]{s: s})
	return s, nil
}

// Kind reports the eviction rule this store was built with.
func (s *Store[K, V]) Kind() Kind { return s.kind }

// Capacity is the maximum number of resident entries.
func (s *Store[K, V]) Capacity() int { return s.cap }

// TTL is the entry lifetime (0 for LRU stores).
func (s *Store[K, V]) TTL() time.Duration { return time.Duration(s.ttl) }

// Get returns the value for k and a presence flag.
// An expired entry is removed and reported as absent; an LRU hit is promoted.
func (s *Store[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.liveLocked(k)
	if !ok {
		var zero V
		return zero, false
	}
	s.pol.OnGet(n)
	return n.val, true
}

// Contains reports whether k is present and live. It does not change recency.
func (s *Store[K, V]) Contains(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.liveLocked(k)
	return ok
}

// Set inserts or overwrites k→v.
// Overwriting refreshes the insertion time and never evicts. Inserting a new
// key into a full store first evicts the entry at the back of the list.
func (s *Store[K, V]) Set(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.NowUnixNano()
	if n, ok := s.m[k]; ok {
		n.val = v
		n.at = now
		s.pol.OnUpdate(n)
		return
	}

	for s.len >= s.cap && s.tail != nil {
		s.evictNode(s.tail, EvictCapacity)
	}

	n := &node[K, V]{key: k, val: v, at: now}
	s.m[k] = n
	s.pol.OnAdd(n)
	s.opt.Metrics.Size(s.len)
}

// Remove deletes k if present and returns true on success.
func (s *Store[K, V]) Remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		return false
	}
	s.pol.OnRemove(n)
	s.unlink(n)
	delete(s.m, k)
	s.opt.Metrics.Size(s.len)
	return true
}

// Clear drops every entry.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n := s.head; n != nil; n = n.next {
		s.pol.OnRemove(n)
	}
	s.m = make(map[K]*node[K, V], s.cap)
	s.head, s.tail = nil, nil
	s.len = 0
	s.opt.Metrics.Size(0)
}

// Len returns the number of live entries. For TTL stores all expired entries
// are purged first.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	return s.len
}

// Keys returns the live keys from newest (or MRU) to oldest (or LRU).
// For TTL stores all expired entries are purged first.
func (s *Store[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	out := make([]K, 0, s.len)
	for n := s.head; n != nil; n = n.next {
		out = append(out, n.key)
	}
	return out
}

// -------------------- internals (mu held) --------------------

// liveLocked looks k up and lazily purges it if it has expired.
func (s *Store[K, V]) liveLocked(k K) (*node[K, V], bool) {
	n, ok := s.m[k]
	if !ok {
		return nil, false
	}
	if s.expiredLocked(n, s.clock.NowUnixNano()) {
		s.evictNode(n, EvictTTL)
		return nil, false
	}
	return n, true
}

func (s *Store[K, V]) expiredLocked(n *node[K, V], now int64) bool {
	if s.ttl == 0 {
		return false
	}
	return now-n.at > s.ttl
}

// purgeExpiredLocked walks from the back while entries are expired. The list is
// ordered by insertion time for TTL stores, so the first live entry ends the walk.
func (s *Store[K, V]) purgeExpiredLocked() {
	if s.ttl == 0 {
		return
	}
	now := s.clock.NowUnixNano()
	for s.tail != nil && s.expiredLocked(s.tail, now) {
		s.evictNode(s.tail, EvictTTL)
	}
}

// insertFront links n at the head in O(1).
func (s *Store[K, V]) insertFront(n *node[K, V]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.len++
}

// moveToFront relinks n at the head in O(1).
func (s *Store[K, V]) moveToFront(n *node[K, V]) {
	if n == s.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

// unlink removes n from the list in O(1). Map bookkeeping is up to the caller.
func (s *Store[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.len--
}

// evictNode removes n, reports the eviction and calls OnEvict.
func (s *Store[K, V]) evictNode(n *node[K, V], reason EvictReason) {
	s.pol.OnRemove(n)
	s.unlink(n)
	delete(s.m, n.key)
	s.opt.Metrics.Evict(reason)
	s.opt.Metrics.Size(s.len)
	if cb := s.opt.OnEvict; cb != nil {
		cb(n.key, n.val, reason)
	}
}

// -------------------- policy hooks --------------------

// storeHooks adapts the store's list operations to policy.Hooks.
type storeHooks[K comparable, V any] struct{ s *Store[K, V] }

func (h storeHooks[K, V]) MoveToFront(x policy.Node[K, V]) { h.s.moveToFront(x.(*node[K, V])) }
func (h storeHooks[K, V]) PushFront(x policy.Node[K, V])   { h.s.insertFront(x.(*node[K, V])) }

var _ policy.Hooks[string, int] = storeHooks[string, int]{}
