package registry

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ClearResult reports which caches were cleared and what failed.
type ClearResult struct {
	Cleared []string
	Errors  []error
}

// OK reports whether nothing failed.
func (r ClearResult) OK() bool { return len(r.Errors) == 0 }

// Err combines every failure into one error (nil if none).
func (r ClearResult) Err() error { return multierr.Combine(r.Errors...) }

// Clear empties the named cache and resets its statistics under the cache's
// lock. A name that was never instantiated is reported as ErrNotFound.
func (r *Registry) Clear(name string) ClearResult {
	var res ClearResult
	c, ok := r.lookup(name)
	if !ok {
		res.Errors = append(res.Errors, errors.Wrapf(ErrNotFound, "%q", name))
		return res
	}
	if err := clearCache(c); err != nil {
		res.Errors = append(res.Errors, err)
		return res
	}
	res.Cleared = append(res.Cleared, name)
	r.log.Info("cache cleared", "name", name)
	return res
}

// ClearAll empties every instantiated cache. A failure on one cache is
// recorded and the remaining caches are still cleared.
func (r *Registry) ClearAll() ClearResult {
	var res ClearResult
	for _, c := range r.list() {
		if err := clearCache(c); err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Cleared = append(res.Cleared, c.name)
	}
	r.log.Info("all caches cleared", "cleared", len(res.Cleared), "errors", len(res.Errors))
	return res
}

// ClearByPattern removes every key matching a shell-style wildcard from every
// instantiated cache and returns how many were removed. Each cache is
// processed under its own lock; the sweep is not atomic across caches.
func (r *Registry) ClearByPattern(pattern string) (int, error) {
	re, err := compileGlob(pattern)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range r.list() {
		total += invalidate(c, re.MatchString)
	}
	r.log.Info("cache keys invalidated", "pattern", pattern, "removed", total)
	return total, nil
}

// ClearByPatternIn is ClearByPattern restricted to one cache.
func (r *Registry) ClearByPatternIn(name, pattern string) (int, error) {
	c, ok := r.lookup(name)
	if !ok {
		return 0, errors.Wrapf(ErrNotFound, "%q", name)
	}
	re, err := compileGlob(pattern)
	if err != nil {
		return 0, err
	}
	n := invalidate(c, re.MatchString)
	r.log.Info("cache keys invalidated", "name", name, "pattern", pattern, "removed", n)
	return n, nil
}

func clearCache(c *Cache) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("clear cache %q: %v", c.name, p)
		}
	}()

	c.store.Clear()
	c.stats.Reset()
	return nil
}

func invalidate(c *Cache, match func(string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range c.store.Keys() {
		if match(k) && c.store.Remove(k) {
			n++
		}
	}
	return n
}
