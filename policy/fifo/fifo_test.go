package fifo

import (
	"testing"

	"github.com/IvanBrykalov/memocache/policy"
)

type testNode[K comparable, V any] struct {
	k K
	v V
}

func (n *testNode[K, V]) Key() K { return n.k }

type countingHooks[K comparable, V any] struct {
	pushed []policy.Node[K, V]
	moved  []policy.Node[K, V]
}

func (h *countingHooks[K, V]) MoveToFront(n policy.Node[K, V]) { h.moved = append(h.moved, n) }
func (h *countingHooks[K, V]) PushFront(n policy.Node[K, V])   { h.pushed = append(h.pushed, n) }

func TestFIFO_OnAdd_PushFront(t *testing.T) {
	t.Parallel()

	h := &countingHooks[string, int]{}
	p := New[string, int]().New(h)

	a := &testNode[string, int]{k: "a"}
	p.OnAdd(a)

	if len(h.pushed) != 1 || h.pushed[0] != a {
		t.Fatalf("OnAdd must push the node once, got %d pushes", len(h.pushed))
	}
}

// Reads must not reorder: eviction order stays by insertion time.
func TestFIFO_OnGet_DoesNotReorder(t *testing.T) {
	t.Parallel()

	h := &countingHooks[string, int]{}
	p := New[string, int]().New(h)

	a := &testNode[string, int]{k: "a"}
	p.OnAdd(a)
	p.OnGet(a)
	p.OnGet(a)

	if len(h.moved) != 0 {
		t.Fatalf("OnGet must not move nodes, got %d moves", len(h.moved))
	}
}

// An overwrite refreshes the insertion time, so the node becomes the newest.
func TestFIFO_OnUpdate_MovesToFront(t *testing.T) {
	t.Parallel()

	h := &countingHooks[string, int]{}
	p := New[string, int]().New(h)

	a := &testNode[string, int]{k: "a"}
	p.OnAdd(a)
	p.OnUpdate(a)

	if len(h.moved) != 1 || h.moved[0] != a {
		t.Fatalf("OnUpdate must move the node to front once")
	}
}
