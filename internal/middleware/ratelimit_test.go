package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		if !rl.Allow("+15551230001", 5, time.Minute) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if rl.Allow("+15551230001", 5, time.Minute) {
		t.Error("6th request should be denied")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter()

	// Use a very short window
	for i := 0; i < 3; i++ {
		rl.Allow("key", 3, 10*time.Millisecond)
	}

	// Should be blocked
	if rl.Allow("key", 3, 10*time.Millisecond) {
		t.Error("should be blocked within window")
	}

	// Wait for window to expire
	time.Sleep(15 * time.Millisecond)

	if !rl.Allow("key", 3, 10*time.Millisecond) {
		t.Error("should be allowed after window expires")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()

	rl.Allow("expired", 5, 10*time.Millisecond)
	time.Sleep(15 * time.Millisecond)

	rl.Allow("active", 5, time.Minute)

	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.entries["expired"]; ok {
		t.Error("expired entry should have been cleaned up")
	}
	if _, ok := rl.entries["active"]; !ok {
		t.Error("active entry should still exist")
	}
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/sms", nil)
	r.RemoteAddr = "10.0.0.5:4321"
	if ip := RealIP(r); ip != "10.0.0.5" {
		t.Errorf("RealIP = %q, want 10.0.0.5", ip)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := RealIP(r); ip != "203.0.113.9" {
		t.Errorf("RealIP with XFF = %q, want 203.0.113.9", ip)
	}
}
