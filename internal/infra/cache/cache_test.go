package cache_test

import (
	"testing"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("2025-10", "snapshot-2025-10")
	val, ok := c.Get("2025-10")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "snapshot-2025-10" {
		t.Errorf("expected 'snapshot-2025-10', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("2025-10", "snapshot-2025-10")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("2025-10")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Purge(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("2025-09", "september")
	c.Set("2025-10", "october")
	c.Purge()

	if c.Len() != 0 {
		t.Fatalf("expected empty cache after purge, got %d entries", c.Len())
	}
	if _, ok := c.Get("2025-10"); ok {
		t.Fatal("expected miss after purge")
	}
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	c := cache.New[string](0)
	defer c.Close()

	c.Set("2025-10", "october")
	if _, ok := c.Get("2025-10"); ok {
		t.Fatal("expected zero TTL cache to never hit")
	}
}
