// Package memo memoizes the results of operations in named registry caches.
//
// A wrapped operation keeps its signature. On each call the wrapper checks
// whether the cache is enabled, derives a key from the arguments, and either
// returns the stored result or runs the operation and stores what it
// returned:
//
//	buttons := memo.Wrap(reg, config.OrderButtons, "get_order_buttons", svc.OrderButtons,
//		memo.WithKey(func(id int) (string, error) { return fmt.Sprintf("order_buttons_%d", id), nil }))
//	b, err := buttons(42)
//
// Operations that take a context use WrapContext. The context is passed
// through to the operation and plays no part in the key.
//
// Concurrent misses on the same key are not coalesced; both callers run the
// operation and the later write wins. Failed calls are never stored.
package memo
