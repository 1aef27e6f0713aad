// Package policy defines the contract between a store and its eviction ordering.
//
// A store owns the key->node map and an intrusive doubly linked list
// (front = newest/most recently used, back = next eviction candidate).
// A policy decides how list positions change on add, read and update.
package policy

// Node is the minimal contract a store entry must satisfy for a policy.
type Node[K comparable, V any] interface {
	Key() K
}

// Hooks expose the O(1) list operations a policy can use to reorder the
// store's list. Implementations are provided by the store; eviction itself
// always takes the back of the list and stays with the store.
//
// Concurrency: all hook calls happen under the store lock.
// Hooks manage only the list; the store owns the key->node map.
type Hooks[K comparable, V any] interface {
	// MoveToFront moves the node to the front of the list.
	MoveToFront(Node[K, V])
	// PushFront links a new node at the front of the list.
	PushFront(Node[K, V])
}

// StorePolicy is a policy instance bound to one store's hooks.
// All methods are invoked under the store lock.
//
// Semantics:
//   - OnAdd links a newly admitted node.
//   - OnGet is called on a read hit; OnUpdate when an existing key is overwritten.
//   - OnRemove is a notification; the store performs the actual unlink.
type StorePolicy[K comparable, V any] interface {
	OnAdd(Node[K, V])
	OnGet(Node[K, V])
	OnUpdate(Node[K, V])
	OnRemove(Node[K, V])
}

// Policy is a factory that binds a policy instance to a store's hooks.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) StorePolicy[K, V]
}
