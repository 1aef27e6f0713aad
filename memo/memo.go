package memo

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/IvanBrykalov/memocache/registry"
)

// Caches is the part of a registry the wrapper needs.
// *registry.Registry implements it.
type Caches interface {
	Enabled(name string) bool
	Cache(name string) (*registry.Cache, error)
}

var _ Caches = (*registry.Registry)(nil)

// Wrap memoizes fn in the cache named cacheName. op names the operation in
// keys; when empty the function's symbol name is used.
//
// A disabled cache runs fn on every call. A cache whose config cannot build a
// store returns the construction error without running fn.
func Wrap[A, R any](c Caches, cacheName, op string, fn func(A) (R, error), opts ...Option[A]) func(A) (R, error) {
	if op == "" {
		op = funcName(fn)
	}
	w := newWrapper(c, cacheName, op, func(_ context.Context, a A) (R, error) { return fn(a) }, opts)
	return func(a A) (R, error) { return w.call(context.Background(), a) }
}

// WrapContext is Wrap for operations that take a context. The context only
// reaches fn; lookups and stores are short critical sections and ignore it.
func WrapContext[A, R any](c Caches, cacheName, op string, fn func(context.Context, A) (R, error), opts ...Option[A]) func(context.Context, A) (R, error) {
	if op == "" {
		op = funcName(fn)
	}
	return newWrapper(c, cacheName, op, fn, opts).call
}

type wrapper[A, R any] struct {
	caches Caches
	cache  string
	op     string
	fn     func(context.Context, A) (R, error)
	key    KeyFunc[A]
	log    *slog.Logger
}

func newWrapper[A, R any](c Caches, cacheName, op string, fn func(context.Context, A) (R, error), opts []Option[A]) *wrapper[A, R] {
	o := options[A]{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &wrapper[A, R]{
		caches: c,
		cache:  cacheName,
		op:     op,
		fn:     fn,
		key:    o.key,
		log:    o.log.With("cache", cacheName, "op", op),
	}
}

func (w *wrapper[A, R]) call(ctx context.Context, a A) (R, error) {
	if !w.caches.Enabled(w.cache) {
		w.log.Debug("cache bypass", "reason", "disabled")
		return w.fn(ctx, a)
	}
	c, err := w.caches.Cache(w.cache)
	if errors.Is(err, registry.ErrDisabled) {
		w.log.Debug("cache bypass", "reason", "unavailable")
		return w.fn(ctx, a)
	}
	if err != nil {
		var zero R
		return zero, err
	}

	key, ok := w.deriveKey(a)
	if !ok {
		return w.fn(ctx, a)
	}

	mu := c.Lock()
	mu.Lock()
	if v, found := c.Store().Get(key); found {
		if r, ok := asResult[R](v); ok {
			c.RecordHit()
			mu.Unlock()
			w.log.Debug("cache hit", "key", key)
			return r, nil
		}
	}
	c.RecordMiss()
	mu.Unlock()
	w.log.Debug("cache miss", "key", key)

	r, err := w.fn(ctx, a)
	if err != nil {
		w.log.Debug("operation failed, not cached", "key", key, "error", err)
		return r, err
	}

	mu.Lock()
	c.Store().Set(key, r)
	mu.Unlock()
	return r, nil
}

// deriveKey returns the lookup key. ok is false only when even the default
// key cannot be built, in which case the call skips the cache.
func (w *wrapper[A, R]) deriveKey(a A) (string, bool) {
	if w.key != nil {
		k, err := w.customKey(a)
		if err == nil {
			return w.op + ":" + k, true
		}
		w.log.Warn("key function failed, using default key", "error", err)
	}
	k, err := Key(w.op, a)
	if err != nil {
		w.log.Warn("cache bypass", "reason", "key", "error", err)
		return "", false
	}
	return k, true
}

func (w *wrapper[A, R]) customKey(a A) (k string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("key function panicked: %v", p)
		}
	}()
	return w.key(a)
}

// asResult converts a stored value back to R. A nil value is the zero R
// stored by an operation whose result type is an interface.
func asResult[R any](v any) (R, bool) {
	if r, ok := v.(R); ok {
		return r, true
	}
	var zero R
	if v == nil && reflect.TypeOf(&zero).Elem().Kind() == reflect.Interface {
		return zero, true
	}
	return zero, false
}

// funcName is the short symbol name of fn, e.g. "service.(*Cards).List".
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Sprintf("%T", fn)
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return fmt.Sprintf("%T", fn)
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
