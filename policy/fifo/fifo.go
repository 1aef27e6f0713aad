// Package fifo implements insertion-order eviction with refresh on overwrite.
//
// Reads never reorder the list, so the back of the list is always the entry
// with the oldest insertion time. Overwriting a key refreshes its insertion
// time and therefore moves it to the front. TTL stores use this ordering both
// for overflow eviction and for purging expired entries from the back.
package fifo

import "github.com/IvanBrykalov/memocache/policy"

type fifo[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

type fifoPolicy[K comparable, V any] struct{}

// New returns a Policy factory that constructs FIFO instances.
func New[K comparable, V any]() policy.Policy[K, V] { return fifoPolicy[K, V]{} }

// New implements policy.Policy.
func (fifoPolicy[K, V]) New(h policy.Hooks[K, V]) policy.StorePolicy[K, V] {
	return &fifo[K, V]{h: h}
}

func (p *fifo[K, V]) OnAdd(n policy.Node[K, V]) { p.h.PushFront(n) }

// OnGet is a no-op: reads do not change insertion order.
func (p *fifo[K, V]) OnGet(_ policy.Node[K, V]) {}

// OnUpdate moves the node to the front; its insertion time was just refreshed.
func (p *fifo[K, V]) OnUpdate(n policy.Node[K, V]) { p.h.MoveToFront(n) }

func (p *fifo[K, V]) OnRemove(_ policy.Node[K, V]) {}
