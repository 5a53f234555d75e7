package persist

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRouterCachePutThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "router_cache.json")
	c := NewRouterCache(path, 10)

	entry := RouterCacheEntry{Result: "4", Confidence: 0.9, Timestamp: time.Now()}
	if err := c.Put("fingerprint-1", entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := c.Get("fingerprint-1")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.Result != "4" {
		t.Fatalf("expected result 4, got %q", got.Result)
	}
}

func TestRouterCacheLoadRestoresFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "router_cache.json")
	c1 := NewRouterCache(path, 10)
	if err := c1.Put("fp", RouterCacheEntry{Result: "42"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c2 := NewRouterCache(path, 10)
	if err := c2.Load(); err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	got, ok := c2.Get("fp")
	if !ok || got.Result != "42" {
		t.Fatalf("expected loaded entry to round-trip, got %+v ok=%v", got, ok)
	}
}

func TestRouterCacheLoadMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	c := NewRouterCache(path, 10)
	if err := c.Load(); err != nil {
		t.Fatalf("expected missing cache file to be a no-op, got %v", err)
	}
}
