package store

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t int64 }

func (f *fakeClock) NowUnixNano() int64  { return f.t }
func (f *fakeClock) add(d time.Duration) { f.t += int64(d) }

type recMetrics struct {
	evicts map[EvictReason]int
	size   int
}

func (m *recMetrics) Evict(r EvictReason) {
	if m.evicts == nil {
		m.evicts = map[EvictReason]int{}
	}
	m.evicts[r]++
}
func (m *recMetrics) Size(n int) { m.size = n }

func newTTL(t *testing.T, capacity int, ttl time.Duration, clk Clock) *Store[string, int] {
	t.Helper()
	s, err := New(Options[string, int]{Kind: KindTTL, Capacity: capacity, TTL: ttl, Clock: clk})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func newLRU(t *testing.T, capacity int) *Store[string, int] {
	t.Helper()
	s, err := New(Options[string, int]{Kind: KindLRU, Capacity: capacity})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New(Options[string, int]{Kind: KindLRU, Capacity: 0}); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("capacity 0: want ErrInvalidCapacity, got %v", err)
	}
	if _, err := New(Options[string, int]{Kind: KindTTL, Capacity: 1}); !errors.Is(err, ErrInvalidTTL) {
		t.Fatalf("ttl 0: want ErrInvalidTTL, got %v", err)
	}
	if _, err := New(Options[string, int]{Kind: "LFU", Capacity: 1}); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("kind LFU: want ErrUnsupportedKind, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	if k, err := ParseKind(" ttl "); err != nil || k != KindTTL {
		t.Fatalf("ttl: got %q, %v", k, err)
	}
	if k, err := ParseKind("Lru"); err != nil || k != KindLRU {
		t.Fatalf("lru: got %q, %v", k, err)
	}
	if _, err := ParseKind("arc"); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("arc: want ErrUnsupportedKind, got %v", err)
	}
}

// Present at t0+T-ε, absent at t0+T+ε.
func TestTTL_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{t: 1_000}
	s := newTTL(t, 4, time.Second, clk)

	s.Set("x", 1)
	clk.add(time.Second - time.Millisecond)
	if v, ok := s.Get("x"); !ok || v != 1 {
		t.Fatalf("before expiry: want 1, got %v ok=%v", v, ok)
	}
	clk.add(2 * time.Millisecond)
	if _, ok := s.Get("x"); ok {
		t.Fatal("expired hit")
	}
	// Lazy purge must have removed it physically.
	if got := len(s.m); got != 0 {
		t.Fatalf("expired entry must be purged on read, map len=%d", got)
	}
}

func TestTTL_ContainsPurges(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	m := &recMetrics{}
	s, err := New(Options[string, int]{Kind: KindTTL, Capacity: 4, TTL: time.Second, Clock: clk, Metrics: m})
	if err != nil {
		t.Fatal(err)
	}

	s.Set("x", 1)
	if !s.Contains("x") {
		t.Fatal("fresh key must be contained")
	}
	clk.add(2 * time.Second)
	if s.Contains("x") {
		t.Fatal("expired key must not be contained")
	}
	if m.evicts[EvictTTL] != 1 {
		t.Fatalf("want 1 ttl eviction, got %d", m.evicts[EvictTTL])
	}
}

// Len must report only live entries.
func TestTTL_LenPurgesExpired(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTTL(t, 8, time.Second, clk)

	s.Set("a", 1)
	s.Set("b", 2)
	clk.add(600 * time.Millisecond)
	s.Set("c", 3)
	clk.add(600 * time.Millisecond) // a, b expired; c is 600ms old

	if got := s.Len(); got != 1 {
		t.Fatalf("Len want 1, got %d", got)
	}
	if keys := s.Keys(); len(keys) != 1 || keys[0] != "c" {
		t.Fatalf("Keys want [c], got %v", keys)
	}
}

// Overflow evicts exactly the oldest insertion, and reads do not protect it.
func TestTTL_OverflowEvictsOldestInsertion(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTTL(t, 2, time.Hour, clk)

	s.Set("a", 1)
	clk.add(time.Millisecond)
	s.Set("b", 2)
	clk.add(time.Millisecond)

	if _, ok := s.Get("a"); !ok { // a read is not a refresh for TTL stores
		t.Fatal("expect hit for a")
	}
	s.Set("c", 3)

	if s.Contains("a") {
		t.Fatal("a (oldest insertion) must be evicted")
	}
	if !s.Contains("b") || !s.Contains("c") {
		t.Fatal("b and c must survive")
	}
	if got := s.Len(); got != 2 {
		t.Fatalf("Len want 2, got %d", got)
	}
}

// Overwriting refreshes the timestamp and never evicts.
func TestTTL_OverwriteRefreshes(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTTL(t, 2, time.Second, clk)

	s.Set("a", 1)
	clk.add(time.Millisecond)
	s.Set("b", 2)
	clk.add(time.Millisecond)
	s.Set("a", 11) // full store, existing key: no eviction, a becomes newest

	if s.Len() != 2 {
		t.Fatal("overwrite must not evict")
	}
	s.Set("c", 3) // now b is the oldest insertion
	if s.Contains("b") {
		t.Fatal("b must be evicted after a was refreshed")
	}
	if v, ok := s.Get("a"); !ok || v != 11 {
		t.Fatalf("a want 11, got %v ok=%v", v, ok)
	}

	clk.add(time.Second - time.Millisecond) // a was refreshed 1ms after b
	if !s.Contains("a") {
		t.Fatal("refreshed a must still be live")
	}
}

// Deterministic LRU eviction: accessing "a" promotes it; inserting "c" evicts "b".
func TestLRU_Recency(t *testing.T) {
	t.Parallel()

	s := newLRU(t, 2)

	s.Set("a", 1)
	s.Set("b", 2)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("expect hit for a")
	}
	s.Set("c", 3)

	if s.Contains("b") {
		t.Fatal("b must be evicted")
	}
	if !s.Contains("a") {
		t.Fatal("a must survive (promoted)")
	}
	if v, ok := s.Get("c"); !ok || v != 3 {
		t.Fatal("c must be present")
	}
}

func TestLRU_UpdatePromotesWithoutEviction(t *testing.T) {
	t.Parallel()

	s := newLRU(t, 2)

	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("a", 10) // promote a; store still full, nothing evicted
	if s.Len() != 2 {
		t.Fatalf("Len want 2, got %d", s.Len())
	}
	s.Set("c", 3)
	if s.Contains("b") {
		t.Fatal("b must be evicted")
	}
	if v, _ := s.Get("a"); v != 10 {
		t.Fatalf("a want 10, got %d", v)
	}
}

// Contains must not count as use for LRU.
func TestLRU_ContainsDoesNotPromote(t *testing.T) {
	t.Parallel()

	s := newLRU(t, 2)

	s.Set("a", 1)
	s.Set("b", 2)
	_ = s.Contains("a")
	s.Set("c", 3)

	if s.Contains("a") {
		t.Fatal("a must be evicted: Contains is not a use")
	}
}

func TestLRU_NeverExpires(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s, err := New(Options[string, int]{Kind: KindLRU, Capacity: 2, TTL: time.Nanosecond, Clock: clk})
	if err != nil {
		t.Fatal(err)
	}
	s.Set("a", 1)
	clk.add(time.Hour)
	if !s.Contains("a") {
		t.Fatal("LRU entries have no expiry")
	}
}

func TestStore_RemoveClearKeys(t *testing.T) {
	t.Parallel()

	var evicted []string
	s, err := New(Options[string, int]{
		Kind:     KindLRU,
		Capacity: 3,
		OnEvict:  func(k string, _ int, _ EvictReason) { evicted = append(evicted, k) },
	})
	if err != nil {
		t.Fatal(err)
	}

	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("c", 3)
	if keys := s.Keys(); len(keys) != 3 || keys[0] != "c" || keys[2] != "a" {
		t.Fatalf("Keys want [c b a], got %v", keys)
	}

	if !s.Remove("b") {
		t.Fatal("Remove b must be true")
	}
	if s.Remove("b") {
		t.Fatal("second Remove b must be false")
	}

	s.Clear()
	if s.Len() != 0 || len(s.Keys()) != 0 {
		t.Fatal("store must be empty after Clear")
	}
	if len(evicted) != 0 {
		t.Fatalf("Remove/Clear are not evictions, got %v", evicted)
	}

	// The list must be usable after Clear.
	s.Set("d", 4)
	if v, ok := s.Get("d"); !ok || v != 4 {
		t.Fatal("d must be present after Clear")
	}
}

func TestStore_CapacityOne(t *testing.T) {
	t.Parallel()

	m := &recMetrics{}
	s, err := New(Options[string, int]{Kind: KindLRU, Capacity: 1, Metrics: m})
	if err != nil {
		t.Fatal(err)
	}
	for i, k := range []string{"a", "b", "c"} {
		s.Set(k, i)
		if s.Len() != 1 {
			t.Fatalf("Len must stay 1, got %d", s.Len())
		}
	}
	if m.evicts[EvictCapacity] != 2 {
		t.Fatalf("want 2 capacity evictions, got %d", m.evicts[EvictCapacity])
	}
	if m.size != 1 {
		t.Fatalf("size gauge want 1, got %d", m.size)
	}
}
