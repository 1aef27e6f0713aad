package memo

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Every call is counted exactly once as a hit or a miss, and fn runs at least
// once per distinct key. Same-key misses may run fn more than once.
func TestWrap_ConcurrentAccounting(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	var calls atomic.Int64
	double := Wrap(reg, "items", "double", counted(&calls), WithLogger[int](quiet))

	const (
		workers = 16
		perW    = 500
		keys    = 32
	)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w // per-iteration copy (go1.21 loop semantics)
		g.Go(func() error {
			for i := 0; i < perW; i++ {
				x := (w*31 + i) % keys
				got, err := double(x)
				if err != nil {
					return err
				}
				if got != x*2 {
					t.Errorf("double(%d) = %d", x, got)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	snap, err := reg.Stats("items")
	require.NoError(t, err)
	assert.EqualValues(t, workers*perW, snap.TotalRequests)
	assert.EqualValues(t, calls.Load(), snap.Misses)
	assert.GreaterOrEqual(t, calls.Load(), int64(keys))
	assert.Equal(t, keys, snap.Entries)
}
