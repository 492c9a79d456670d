package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("fourth request should be rejected")
	}
}

func TestAllowIsPerClient(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("first client should be allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("second client should have its own bucket")
	}
}

func TestAllowStrictSeparateBucket(t *testing.T) {
	l := NewLimiter(100, time.Minute)
	if !l.AllowStrict("jane@example.com", 1, time.Minute) {
		t.Fatalf("first strict request should be allowed")
	}
	if l.AllowStrict("jane@example.com", 1, time.Minute) {
		t.Fatalf("second strict request should be rejected")
	}
	// The general bucket is unaffected by strict rejections.
	if !l.Allow("jane@example.com") {
		t.Fatalf("general limit should be independent of the strict one")
	}
}

func TestWindowExpiry(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("first request should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("second request inside the window should be rejected")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("request after window expiry should be allowed")
	}
}

func TestEmptyClientAlwaysAllowed(t *testing.T) {
	l := NewLimiter(0, time.Minute)
	if !l.Allow("") {
		t.Fatalf("empty client id must bypass limiting")
	}
}
