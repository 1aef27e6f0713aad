package store

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Kind selects the eviction rule of a store.
type Kind string

const (
	// KindTTL expires entries by age and evicts the oldest insertion on overflow.
	KindTTL Kind = "TTL"
	// KindLRU evicts the least recently used entry on overflow; no expiry.
	KindLRU Kind = "LRU"
)

var (
	// ErrUnsupportedKind is returned by New for a Kind other than KindTTL/KindLRU.
	ErrUnsupportedKind = errors.New("store: unsupported kind")
	// ErrInvalidCapacity is returned by New when Capacity < 1.
	ErrInvalidCapacity = errors.New("store: capacity must be >= 1")
	// ErrInvalidTTL is returned by New for a TTL store with a non-positive TTL.
	ErrInvalidTTL = errors.New("store: ttl must be > 0")
)

// ParseKind maps a case-insensitive name ("ttl", "LRU") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case KindTTL, KindLRU:
		return k, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedKind, "%q", s)
	}
}

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity: removed to make room for a new key in a full store.
	EvictCapacity EvictReason = iota
	// EvictTTL: expired by age (lazy on read, eager on Len/Keys).
	EvictTTL
)

func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	default:
		return "capacity"
	}
}

// Metrics exposes store-level observability hooks.
// A NoopMetrics implementation is used by default.
type Metrics interface {
	Evict(reason EvictReason)
	Size(entries int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures a store. Kind and Capacity are required; TTL is required
// for KindTTL and ignored for KindLRU.
type Options[K comparable, V any] struct {
	Kind     Kind
	Capacity int
	TTL      time.Duration

	// OnEvict is called on eviction under the store lock; keep it lightweight.
	// Explicit Remove and Clear are not evictions.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics

	// Clock overrides the time source (tests). Nil => monotonic process clock.
	Clock Clock
}

// monoClock reads the monotonic clock so that insertion times never go
// backwards; the TTL purge relies on list order matching insertion time.
type monoClock struct{ base time.Time }

func (c monoClock) NowUnixNano() int64 {
	return c.base.UnixNano() + int64(time.Since(c.base))
}
