package registry

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/memocache/internal/util"
	"github.com/IvanBrykalov/memocache/store"
)

// Stats counts hits and misses of one cache. Counters are independent of the
// store's contents and only reset on an explicit clear.
type Stats struct {
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64

	createdAt atomic.Pointer[time.Time]
	now       func() time.Time
}

func newStats(now func() time.Time) *Stats {
	if now == nil {
		now = time.Now
	}
	s := &Stats{now: now}
	t := now()
	s.createdAt.Store(&t)
	return s
}

// RecordHit increments the hit counter.
func (s *Stats) RecordHit() { s.hits.Add(1) }

// RecordMiss increments the miss counter.
func (s *Stats) RecordMiss() { s.misses.Add(1) }

// Hits returns the number of hits since creation or the last reset.
func (s *Stats) Hits() int64 { return s.hits.Load() }

// Misses returns the number of misses since creation or the last reset.
func (s *Stats) Misses() int64 { return s.misses.Load() }

// HitRate is hits/(hits+misses), or 0 before the first request.
func (s *Stats) HitRate() float64 {
	return hitRate(s.hits.Load(), s.misses.Load())
}

// CreatedAt is when the counters started (creation or last reset).
func (s *Stats) CreatedAt() time.Time { return *s.createdAt.Load() }

// Uptime is the time elapsed since CreatedAt.
func (s *Stats) Uptime() time.Duration { return s.now().Sub(s.CreatedAt()) }

// Reset zeroes the counters and restarts the uptime clock.
func (s *Stats) Reset() {
	s.hits.Store(0)
	s.misses.Store(0)
	t := s.now()
	s.createdAt.Store(&t)
}

// Snapshot is a point-in-time view of a cache, shaped for JSON.
type Snapshot struct {
	Hits          int64         `json:"hits"`
	Misses        int64         `json:"misses"`
	TotalRequests int64         `json:"total_requests"`
	HitRate       float64       `json:"hit_rate"`
	CreatedAt     time.Time     `json:"created_at"`
	Uptime        time.Duration `json:"-"`
	UptimeSeconds float64       `json:"uptime_seconds"`

	Entries  int        `json:"entries"`
	Kind     store.Kind `json:"kind"`
	Capacity int        `json:"capacity"`
}

// Snapshot reads the counters. Hits and misses are loaded separately, so a
// snapshot taken under concurrent traffic is approximate.
func (s *Stats) Snapshot() Snapshot {
	h, m := s.hits.Load(), s.misses.Load()
	up := s.Uptime()
	return Snapshot{
		Hits:          h,
		Misses:        m,
		TotalRequests: h + m,
		HitRate:       round(hitRate(h, m), 4),
		CreatedAt:     s.CreatedAt(),
		Uptime:        up,
		UptimeSeconds: round(up.Seconds(), 2),
	}
}

func hitRate(h, m int64) float64 {
	total := h + m
	if total == 0 {
		return 0
	}
	return float64(h) / float64(total)
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
