package extension

import "testing"

type counterExt struct {
	resets int
	freed  bool
}

func (c *counterExt) Reset() { c.resets++ }
func (c *counterExt) Free()  { c.freed = true }

func TestRegistry_AddRejectsDuplicateKey(t *testing.T) {
	r := NewRegistry()
	const key Key = 1

	if ok := r.Add(key, &counterExt{}, true); !ok {
		t.Fatal("expected first Add under a fresh key to succeed")
	}
	if ok := r.Add(key, &counterExt{}, true); ok {
		t.Fatal("expected second Add under the same key to be rejected")
	}
}

func TestRegistry_QueryRoundTrip(t *testing.T) {
	r := NewRegistry()
	ext := &counterExt{}
	r.Add(Key(7), ext, true)

	got, ok := r.Query(Key(7))
	if !ok {
		t.Fatal("expected Query to find the registered extension")
	}
	if got != ext {
		t.Fatal("expected Query to return the same extension instance")
	}

	if _, ok := r.Query(Key(8)); ok {
		t.Fatal("expected Query on an unregistered key to fail")
	}
}

func TestRegistry_ResetCallsResetNotFree(t *testing.T) {
	r := NewRegistry()
	ext := &counterExt{}
	r.Add(Key(1), ext, true)

	r.Reset()
	r.Reset()

	if ext.resets != 2 {
		t.Fatalf("expected 2 resets, got %d", ext.resets)
	}
	if ext.freed {
		t.Fatal("expected Reset to never call Free")
	}
	if _, ok := r.Query(Key(1)); !ok {
		t.Fatal("expected extension identity to survive Reset")
	}
}

func TestRegistry_FreeAllFreesOwnedOnly(t *testing.T) {
	r := NewRegistry()
	owned := &counterExt{}
	borrowed := &counterExt{}
	r.Add(Key(1), owned, true)
	r.Add(Key(2), borrowed, false)

	r.FreeAll()

	if !owned.freed {
		t.Fatal("expected owned extension to be freed")
	}
	if borrowed.freed {
		t.Fatal("expected borrowed (non-owned) extension not to be freed")
	}
	if _, ok := r.Query(Key(1)); ok {
		t.Fatal("expected registry to be empty after FreeAll")
	}
	if _, ok := r.Query(Key(2)); ok {
		t.Fatal("expected registry to be empty after FreeAll")
	}
}

func TestRegistry_RemoveDoesNotCallFree(t *testing.T) {
	r := NewRegistry()
	ext := &counterExt{}
	r.Add(Key(1), ext, true)

	r.Remove(Key(1))

	if ext.freed {
		t.Fatal("expected Remove not to call Free")
	}
	if _, ok := r.Query(Key(1)); ok {
		t.Fatal("expected Query to fail after Remove")
	}
}
