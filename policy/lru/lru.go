// Package lru implements the least-recently-used ordering policy.
package lru

import "github.com/IvanBrykalov/memocache/policy"

// lru is a classic "move-to-front" policy: reads and writes both count as use,
// so the back of the list is always the least recently used key.
type lru[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

type lruPolicy[K comparable, V any] struct{}

// New returns a Policy factory that constructs LRU instances.
func New[K comparable, V any]() policy.Policy[K, V] { return lruPolicy[K, V]{} }

// New implements policy.Policy.
func (lruPolicy[K, V]) New(h policy.Hooks[K, V]) policy.StorePolicy[K, V] {
	return &lru[K, V]{h: h}
}

// OnAdd places the new entry at MRU. The store enforces capacity.
func (p *lru[K, V]) OnAdd(n policy.Node[K, V]) { p.h.PushFront(n) }

// OnGet promotes the entry to MRU.
func (p *lru[K, V]) OnGet(n policy.Node[K, V]) { p.h.MoveToFront(n) }

// OnUpdate promotes the entry to MRU (an overwrite is a use).
func (p *lru[K, V]) OnUpdate(n policy.Node[K, V]) { p.h.MoveToFront(n) }

func (p *lru[K, V]) OnRemove(_ policy.Node[K, V]) {}
