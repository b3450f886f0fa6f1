package pool

import "testing"

type widget struct {
	name string
}

func TestPool_EmplaceLowestFreeSlot(t *testing.T) {
	p := New[widget](4)

	id1, ok := p.Emplace(func(id int) widget { return widget{name: "a"} })
	if !ok || id1 != 0 {
		t.Fatalf("expected first emplace to get id 0, got %d ok=%v", id1, ok)
	}

	id2, ok := p.Emplace(func(id int) widget { return widget{name: "b"} })
	if !ok || id2 != 1 {
		t.Fatalf("expected second emplace to get id 1, got %d ok=%v", id2, ok)
	}

	p.Release(id1, false)

	id3, ok := p.Emplace(func(id int) widget { return widget{name: "c"} })
	if !ok || id3 != 0 {
		t.Fatalf("expected reused lowest free slot 0, got %d ok=%v", id3, ok)
	}
}

func TestPool_EmplaceFull(t *testing.T) {
	p := New[widget](1)

	if _, ok := p.Emplace(func(id int) widget { return widget{} }); !ok {
		t.Fatal("expected first emplace to succeed")
	}
	if _, ok := p.Emplace(func(id int) widget { return widget{} }); ok {
		t.Fatal("expected second emplace on full pool to fail")
	}
}

func TestPool_GetInvalidID(t *testing.T) {
	p := New[widget](2)
	if _, ok := p.Get(0); ok {
		t.Fatal("expected Get on empty slot to fail")
	}
	if _, ok := p.Get(99); ok {
		t.Fatal("expected Get on out-of-range id to fail")
	}
}

// TestPool_ReleaseLockDeferral covers S4 / invariant 2: a release-locked
// entity stays reachable via Get even after Release, and is only
// physically destroyed once the last Unlock drops the count to zero.
func TestPool_ReleaseLockDeferral(t *testing.T) {
	p := New[widget](2)
	id, _ := p.Emplace(func(id int) widget { return widget{name: "actor"} })

	destroyed := false
	p.OnDestroy(func(id int, w *widget) { destroyed = true })

	guard := NewScopedReleaseLock(p, id)

	p.Release(id, false)

	if _, ok := p.Get(id); !ok {
		t.Fatal("expected Get to still return the entity while locked")
	}
	if destroyed {
		t.Fatal("expected destruction to be deferred while locked")
	}

	guard.Release()

	if _, ok := p.Get(id); ok {
		t.Fatal("expected Get to fail after the last lock dropped")
	}
	if !destroyed {
		t.Fatal("expected destruction to complete once the last lock dropped")
	}
}

func TestPool_ReleaseForceImmediate(t *testing.T) {
	p := New[widget](1)
	id, _ := p.Emplace(func(id int) widget { return widget{} })
	p.Lock(id)

	p.Release(id, true)

	if _, ok := p.Get(id); ok {
		t.Fatal("expected forceImmediate release to destroy despite an active lock")
	}
}

func TestPool_ForEach_ToleratesTombstoningDuringIteration(t *testing.T) {
	p := New[widget](4)
	var ids []int
	for i := 0; i < 3; i++ {
		id, _ := p.Emplace(func(id int) widget { return widget{} })
		ids = append(ids, id)
	}

	visited := 0
	p.ForEach(func(id int, w *widget) bool {
		visited++
		if id == ids[0] {
			// Release a later entity mid-iteration: must not panic or
			// revisit, matching the "tolerate holes mid-iteration" rule.
			p.Release(ids[2], false)
		}
		return true
	})

	if visited != 2 {
		t.Fatalf("expected the entity released mid-iteration to be skipped (2 visits), got %d", visited)
	}
	if _, ok := p.Get(ids[2]); ok {
		t.Fatal("expected the mid-iteration release to have taken effect")
	}
}

func TestPool_NoIDAliasing(t *testing.T) {
	p := New[widget](3)
	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		id, ok := p.Emplace(func(id int) widget { return widget{} })
		if !ok {
			t.Fatalf("emplace %d failed", i)
		}
		if seen[id] {
			t.Fatalf("id %d aliased", id)
		}
		seen[id] = true
	}
}
