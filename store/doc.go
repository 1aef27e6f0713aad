// Package store provides the bounded key/value containers behind every named
// cache: a time-to-live store and a least-recently-used store.
//
// Design
//
//   - Variants: the set of eviction rules is closed. Options.Kind selects one
//     of KindTTL or KindLRU at construction time; New rejects anything else.
//
//   - Storage: a store keeps a map[K]*node for lookups and an intrusive doubly
//     linked list for ordering. All point operations are O(1) expected.
//
//   - Ordering: the list is driven by a policy (package policy). LRU stores use
//     move-to-front on read and write. TTL stores use insertion order with
//     refresh on overwrite, so the back of the list always holds the entry with
//     the oldest insertion time.
//
//   - Expiry (TTL only): an entry older than Options.TTL is logically absent.
//     Get and Contains purge it lazily; Len and Keys purge every expired entry
//     before answering.
//
//   - Capacity: inserting a new key into a full store evicts exactly one entry
//     from the back of the list first. Overwriting an existing key never evicts.
//
// Basic usage
//
//	s, err := store.New(store.Options[string, any]{Kind: store.KindTTL, Capacity: 100, TTL: 5 * time.Minute})
//	if err != nil {
//	    return err
//	}
//	s.Set("a", 1)
//	v, ok := s.Get("a")
//
// Thread-safety
//
// Every method takes the store's own mutex; no caller can observe a
// half-updated list or map.
package store
