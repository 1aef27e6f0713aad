package store

// node is an intrusive doubly linked list element owned by a store.
type node[K comparable, V any] struct {
	key K
	val V

	// Intrusive list links: head is newest/MRU, tail is the eviction candidate.
	prev *node[K, V]
	next *node[K, V]

	// Insertion time in UnixNano; refreshed on overwrite.
	at int64
}

// Key returns the node key (part of policy.Node).
func (n *node[K, V]) Key() K { return n.key }
