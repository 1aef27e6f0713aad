package util

import (
	"sync"
	"testing"
	"unsafe"
)

func TestPaddedAtomicInt64_Size(t *testing.T) {
	t.Parallel()

	if got := unsafe.Sizeof(PaddedAtomicInt64{}); got != CacheLineSize {
		t.Fatalf("want %d bytes, got %d", CacheLineSize, got)
	}
}

func TestPaddedAtomicInt64_ConcurrentAdd(t *testing.T) {
	t.Parallel()

	var c PaddedAtomicInt64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := c.Load(); got != 8000 {
		t.Fatalf("want 8000, got %d", got)
	}
}
