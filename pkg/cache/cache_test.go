package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("dependents:1", true, 1*time.Second)
	val, ok := c.Get("dependents:1")
	if !ok || val != true {
		t.Fatalf("expected true, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	c.Set("dependents:1", true, 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	if _, ok := c.Get("dependents:1"); ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestExpiredEntryIsEvictedOnLookup(t *testing.T) {
	c := New()
	c.Set("dependents:1", true, 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	c.Get("dependents:1")
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, %d left", c.Len())
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("dependents:1", false, 1*time.Second)
	c.Delete("dependents:1")
	if _, ok := c.Get("dependents:1"); ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Set("dependents:1", true, 1*time.Second)
	c.Set("dependents:2", false, 1*time.Second)
	c.Set("listing:all", "cached", 1*time.Second)
	c.Invalidate("dependents:")
	_, ok1 := c.Get("dependents:1")
	_, ok2 := c.Get("dependents:2")
	_, ok3 := c.Get("listing:all")
	if ok1 || ok2 {
		t.Fatalf("expected dependents keys to be invalidated")
	}
	if !ok3 {
		t.Fatalf("expected listing:all to still exist")
	}
}
