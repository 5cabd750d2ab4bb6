package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("k", 42, 0, nil)
	v, ok := c.Get("k")
	if !ok || v != 42 {
		t.Errorf("Get(k) = %v, %v; want 42, true", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	c.Set("k", "v", 1, nil)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("value expired immediately")
	}
	// Force expiry by rewriting with an already-past deadline.
	c.mu.Lock()
	c.items["k"] = item{value: "v", expiresAt: time.Now().Add(-time.Second).UnixNano()}
	c.mu.Unlock()
	if _, ok := c.Get("k"); ok {
		t.Error("expired value still returned")
	}
}

func TestInvalidateTag(t *testing.T) {
	c := New()
	c.Set("a", 1, 0, []string{"dashboard"})
	c.Set("b", 2, 0, []string{"dashboard"})
	c.Set("c", 3, 0, []string{"other"})

	c.InvalidateTag("dashboard")

	if _, ok := c.Get("a"); ok {
		t.Error("a survived tag invalidation")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b survived tag invalidation")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c dropped by unrelated tag invalidation")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("k", "v", 0, nil)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted key still present")
	}
}
