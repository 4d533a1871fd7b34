package cache

import (
	"context"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be cached")
	}
	c.Set("c", 3) // evicts b, the least recently used

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	clk := &clock{t: time.Date(2025, 3, 13, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clk.now)
	c.Set("summary", "x")
	c.Set("monthly", "y")

	clk.t = clk.t.Add(30 * time.Second)
	c.Set("monthly", "z") // refreshes the ttl
	clk.t = clk.t.Add(45 * time.Second)

	if _, ok := c.Get("summary"); ok {
		t.Fatal("summary should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Fatalf("cleaned %d, want 0", n)
	}
	if v, ok := c.Get("monthly"); !ok || v != "z" {
		t.Fatalf("monthly = %q %v", v, ok)
	}

	clk.t = clk.t.Add(time.Hour)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("cleaned %d, want 1", n)
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestLRUPurgeAndDelete(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Size() != 1 {
		t.Fatalf("size below one should clamp to one, got %d", c.Size())
	}
	c.Delete("b")
	if c.Size() != 0 {
		t.Fatal("delete failed")
	}
	c.Set("a", 1)
	c.Purge()
	if _, ok := c.Get("a"); ok || c.Size() != 0 {
		t.Fatal("purge failed")
	}
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	clk := &clock{t: time.Now()}
	c := NewLRUCache[int](4, time.Millisecond).WithClock(clk.now)
	c.Set("a", 1)
	clk.t = clk.t.Add(time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("cleaned %d, want 1", n)
	}

	m.Start(context.Background(), time.Millisecond)
	m.Start(context.Background(), time.Millisecond)
	m.Stop()
	m.Stop()
}
