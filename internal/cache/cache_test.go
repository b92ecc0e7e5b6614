package cache

import (
	"strings"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found := c.Get("k")
	if !found || string(got) != "v" {
		t.Fatalf("Get = %q, %v; want v, true", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Fatal("expected miss after delete")
	}
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Fatal("expected empty cache after clear")
	}
}

func TestQueryKeyHashesInput(t *testing.T) {
	a := QueryKey("quantum breakthrough")
	b := QueryKey("quantum breakthrough")
	if a != b {
		t.Fatal("same query must produce the same key")
	}
	if strings.Contains(a, "quantum") {
		t.Fatal("raw query must not appear in the key")
	}
	if a == QueryKey("other") {
		t.Fatal("distinct queries must produce distinct keys")
	}
}

func TestClaimKeyEmbedsID(t *testing.T) {
	key := ClaimKey("abc-123")
	if !strings.HasSuffix(key, "abc-123") {
		t.Fatalf("key %q should end with the claim id", key)
	}
}
