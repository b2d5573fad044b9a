package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestSetGetAndInvalidate(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Get reported a hit on an empty cache")
	}

	c.Set("k", "v")
	got, found := c.Get("k")
	if !found || got != "v" {
		t.Fatalf("Get(k) = %q, %v; want v, true", got, found)
	}

	c.Invalidate("k")
	if _, found := c.Get("k"); found {
		t.Error("Get reported a hit after Invalidate")
	}
}

func TestSetOverwritesAndRefreshes(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("k", 1)
	c.Set("k", 2)

	if got, _ := c.Get("k"); got != 2 {
		t.Errorf("Get(k) = %d, want the overwritten value 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after overwriting the same key", c.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	// Touch k0 so k1 becomes the eviction candidate
	c.Get("k0")
	c.Set("k3", 3)

	if _, found := c.Get("k1"); found {
		t.Error("k1 survived eviction despite being least recently used")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, found := c.Get(key); !found {
			t.Errorf("%s was evicted, want it kept", key)
		}
	}
}

func TestExpiredEntriesAreMisses(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)

	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Get reported a hit on an expired entry")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 after the expired read dropped the entry", c.Len())
	}
}

func TestPurgeExpired(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)

	c.Set("a", "1")
	c.Set("b", "2")
	time.Sleep(20 * time.Millisecond)
	c.Set("c", "3")

	if purged := c.PurgeExpired(); purged != 2 {
		t.Errorf("PurgeExpired = %d, want 2", purged)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want only the fresh entry left", c.Len())
	}
}

func TestManagerSweepsRegisteredCaches(t *testing.T) {
	c := NewLRUCache[string](10, 5*time.Millisecond)
	c.Set("k", "v")

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	deadline := time.After(500 * time.Millisecond)
	for c.Len() > 0 {
		select {
		case <-deadline:
			t.Fatal("manager never purged the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
