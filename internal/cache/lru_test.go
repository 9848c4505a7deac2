package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Second)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("j", "w")
	now = now.Add(2 * time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", c.Size())
	}
}

func TestGetOrComputeCountsHits(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	calls := 0
	compute := func() int { calls++; return 42 }

	for i := 0; i < 3; i++ {
		if v := c.GetOrCompute("answer", compute); v != 42 {
			t.Fatalf("GetOrCompute = %d", v)
		}
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
	if hits, misses := c.Stats(); hits != 2 || misses != 1 {
		t.Fatalf("Stats() = %d hits, %d misses", hits, misses)
	}
}

func TestManagerSweep(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := NewLRUCache[int](4, time.Second)
	b := NewLRUCache[int](4, time.Hour)
	a.now = func() time.Time { return now }
	b.now = a.now
	a.Set("x", 1)
	b.Set("y", 2)
	now = now.Add(time.Minute)

	m := NewManager(nil)
	m.Register(a, b)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
}

func TestCacheInterfaceRegistersWithManager(t *testing.T) {
	var c Cache[string] = NewLRUCache[string](2, time.Hour)

	calls := 0
	compute := func() string { calls++; return "v" }
	c.GetOrCompute("k", compute)
	c.GetOrCompute("k", compute)
	if calls != 1 || c.Size() != 1 {
		t.Fatalf("calls = %d size = %d, want 1/1", calls, c.Size())
	}
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("Delete did not remove the entry")
	}

	m := NewManager(nil)
	m.Register(c)
	if n := m.Sweep(); n != 0 {
		t.Fatalf("Sweep() = %d, want 0", n)
	}
}
