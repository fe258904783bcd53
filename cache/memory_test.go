package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	mc := NewMemoryCache[[]string](100, time.Hour)

	mc.Set("newtonsoft.json", []string{"6.0.8", "7.0.1"})

	got, ok := mc.Get("newtonsoft.json")
	if !ok {
		t.Fatal("expected key to be found")
	}
	if len(got) != 2 || got[1] != "7.0.1" {
		t.Errorf("got %v, want [6.0.8 7.0.1]", got)
	}

	if _, ok := mc.Get("missing"); ok {
		t.Error("expected missing key to be absent")
	}

	stats := mc.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 entry", stats)
	}
}

func TestMemoryCache_TTLExpiration(t *testing.T) {
	mc := NewMemoryCache[int](100, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	mc.Set("key", 1)
	if _, ok := mc.Get("key"); !ok {
		t.Fatal("expected key to exist")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := mc.Get("key"); ok {
		t.Fatal("expected key to be expired")
	}
	if mc.Stats().Entries != 0 {
		t.Error("expired entry should be removed")
	}
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	mc := NewMemoryCache[int](10, 0)
	now := time.Now()
	mc.now = func() time.Time { return now }

	mc.Set("key", 7)
	now = now.Add(24 * time.Hour)
	if v, ok := mc.Get("key"); !ok || v != 7 {
		t.Errorf("Get() = %v, %v; want 7, true", v, ok)
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	mc := NewMemoryCache[int](2, time.Hour)

	mc.Set("a", 1)
	mc.Set("b", 2)
	mc.Get("a") // a becomes most recently used
	mc.Set("c", 3)

	if _, ok := mc.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := mc.Get("a"); !ok {
		t.Error("expected a to survive")
	}
	if _, ok := mc.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestMemoryCache_UpdateDeleteClear(t *testing.T) {
	mc := NewMemoryCache[string](10, time.Hour)

	mc.Set("k", "old")
	mc.Set("k", "new")
	if v, _ := mc.Get("k"); v != "new" {
		t.Errorf("Get() = %q, want new", v)
	}

	mc.Delete("k")
	if _, ok := mc.Get("k"); ok {
		t.Error("expected k to be deleted")
	}

	mc.Set("x", "1")
	mc.Set("y", "2")
	mc.Clear()
	if mc.Stats().Entries != 0 {
		t.Errorf("Entries after Clear = %d, want 0", mc.Stats().Entries)
	}
}
