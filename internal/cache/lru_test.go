package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should be present")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a should survive, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUExpiresEntries(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clock.Now)

	c.Set("k", "v")
	clock.Advance(30 * time.Second)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("entry should still be valid")
	}
	clock.Advance(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry should have expired")
	}

	c.Set("x", "1")
	c.Set("y", "2")
	clock.Advance(2 * time.Minute)
	c.Set("z", "3")
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("expected two expired entries, got %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("expected one live entry, got %d", c.Size())
	}
}

func TestLRUUpdateDeletePurgeAndStats(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("update lost, got %d", v)
	}
	c.Delete("a")
	c.Get("a")

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}

	c.Set("b", 1)
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("purge left %d entries", c.Size())
	}
}

func TestManagerCleanNowAndStop(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](5, time.Second).WithClock(clock.Now)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(time.Hour)

	clock.Advance(2 * time.Second)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	m.Stop()
	m.Stop()

	idle := NewManager(nil)
	idle.Stop()
}
