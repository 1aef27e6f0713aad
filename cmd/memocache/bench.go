package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/memocache/config"
	"github.com/IvanBrykalov/memocache/memo"
	pmet "github.com/IvanBrykalov/memocache/metrics/prom"
	"github.com/IvanBrykalov/memocache/registry"
	"github.com/IvanBrykalov/memocache/store"
)

type benchFlags struct {
	cache    string
	kind     string
	capacity int
	ttl      int

	workers  int
	duration time.Duration
	readPct  int
	work     time.Duration

	keys  int
	zipfS float64
	zipfV float64
	seed  int64

	pprofAddr   string
	metricsAddr string
}

var bf benchFlags

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a synthetic memoization workload against one cache",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return bench(cmd.Context(), bf)
	},
}

func init() {
	f := benchCmd.Flags()
	f.StringVar(&bf.cache, "cache", "bench", "cache name")
	f.StringVar(&bf.kind, "kind", "lru", "store kind: ttl | lru")
	f.IntVar(&bf.capacity, "cap", 100_000, "cache capacity (entries)")
	f.IntVar(&bf.ttl, "ttl", 60, "entry TTL in seconds (ttl kind only)")

	f.IntVar(&bf.workers, "workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	f.DurationVar(&bf.duration, "duration", 10*time.Second, "benchmark duration")
	f.IntVar(&bf.readPct, "reads", 95, "memoized call percentage [0..100]; the rest invalidate a key")
	f.DurationVar(&bf.work, "work", 0, "simulated cost of the wrapped operation")

	f.IntVar(&bf.keys, "keys", 1_000_000, "keyspace size")
	f.Float64Var(&bf.zipfS, "zipf_s", 1.1, "Zipf s > 1 (skew)")
	f.Float64Var(&bf.zipfV, "zipf_v", 1.0, "Zipf v")
	f.Int64Var(&bf.seed, "seed", time.Now().UnixNano(), "random seed")

	f.StringVar(&bf.pprofAddr, "pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	f.StringVar(&bf.metricsAddr, "http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
}

func bench(ctx context.Context, f benchFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	kind, err := store.ParseKind(f.kind)
	if err != nil {
		return err
	}

	// ---- pprof and metrics (on DefaultServeMux) ----
	if f.pprofAddr != "" {
		go func() {
			slog.Info("pprof: serving", "addr", f.pprofAddr)
			slog.Warn("pprof stopped", "error", http.ListenAndServe(f.pprofAddr, nil))
		}()
	}
	metrics := pmet.New(nil, "memocache", "bench", nil)
	if f.metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			slog.Info("metrics: serving", "addr", f.metricsAddr)
			slog.Warn("metrics stopped", "error", http.ListenAndServe(f.metricsAddr, nil))
		}()
	}

	// ---- Build cache ----
	configs, err := config.New(config.WithDefaults(map[string]config.CacheConfig{
		f.cache: {Kind: kind, Capacity: f.capacity, TTLSeconds: f.ttl, Enabled: true},
	}))
	if err != nil {
		return err
	}
	reg := registry.New(configs, registry.WithMetrics(metrics))
	c, err := reg.Cache(f.cache)
	if err != nil {
		if errors.Is(err, registry.ErrDisabled) {
			return errors.Errorf("cache %q is disabled by the environment", f.cache)
		}
		return err
	}

	work := f.work
	compute := memo.Wrap(reg, f.cache, "compute", func(k uint64) (string, error) {
		if work > 0 {
			time.Sleep(work)
		}
		return "v" + strconv.FormatUint(k, 10), nil
	}, memo.WithKey(func(k uint64) (string, error) { return strconv.FormatUint(k, 10), nil }))

	workersN := f.workers
	if workersN <= 0 {
		workersN = 1
	}
	keysMax := uint64(f.keys - 1)

	// ---- Load generation ----
	var calls, invalidations, total atomic.Uint64
	runCtx, cancel := context.WithTimeout(ctx, f.duration)
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(runCtx)
	for w := 0; w < workersN; w++ {
		w := w // per-iteration copy (go1.21 loop semantics)
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(f.seed + int64(w)*9973))
			localZipf := rand.NewZipf(localR, f.zipfS, f.zipfV, keysMax)

			for gctx.Err() == nil {
				total.Add(1)
				k := localZipf.Uint64()
				if int(localR.Int31n(100)) < f.readPct {
					calls.Add(1)
					if _, err := compute(k); err != nil {
						return err
					}
					continue
				}
				invalidations.Add(1)
				mu := c.Lock()
				mu.Lock()
				c.Store().Remove("compute:" + strconv.FormatUint(k, 10))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	// ---- Report ----
	snap, err := reg.Stats(f.cache)
	if err != nil {
		return err
	}
	ops := total.Load()
	fmt.Printf("cache=%s kind=%s cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		f.cache, kind, f.capacity, workersN, f.keys, elapsed, f.seed)
	fmt.Printf("ops=%d (%.0f ops/s)  calls=%d  invalidations=%d\n",
		ops, float64(ops)/elapsed.Seconds(), calls.Load(), invalidations.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", snap.Hits, snap.Misses, snap.HitRate*100)
	fmt.Printf("entries=%d\n", snap.Entries)
	return nil
}
