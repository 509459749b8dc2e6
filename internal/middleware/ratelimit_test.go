package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func allowed(rl *RateLimiter, key string, limit int, window time.Duration) bool {
	ok, _ := rl.Allow(key, limit, window)
	return ok
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		if !allowed(rl, "key", 5, time.Minute) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retryIn := rl.Allow("key", 5, time.Minute)
	if ok {
		t.Error("6th request should be denied")
	}
	if retryIn <= 0 || retryIn > time.Minute {
		t.Errorf("retryIn = %v, want within the window", retryIn)
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		allowed(rl, "203.0.113.7", 3, time.Minute)
	}
	if allowed(rl, "203.0.113.7", 3, time.Minute) {
		t.Error("exhausted key should be denied")
	}
	if !allowed(rl, "203.0.113.8", 3, time.Minute) {
		t.Error("a different key should still be allowed")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		allowed(rl, "key", 3, 10*time.Millisecond)
	}
	if allowed(rl, "key", 3, 10*time.Millisecond) {
		t.Error("should be blocked within window")
	}

	time.Sleep(15 * time.Millisecond)

	if !allowed(rl, "key", 3, 10*time.Millisecond) {
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

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter()
	keyFunc := func(r *http.Request) string { return "test" }

	handler := RateLimit(rl, keyFunc, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest("POST", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("3rd request: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("rejection should carry Retry-After")
	}
	if !strings.Contains(rec.Body.String(), "too many requests") {
		t.Errorf("body = %q, want JSON error", rec.Body.String())
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "198.51.100.4:52011"
	if ip := RealIP(req); ip != "198.51.100.4" {
		t.Errorf("RealIP = %q, want remote host", ip)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := RealIP(req); ip != "203.0.113.9" {
		t.Errorf("RealIP = %q, want first forwarded hop", ip)
	}

	req.Header.Set("CF-Connecting-IP", "192.0.2.55")
	if ip := RealIP(req); ip != "192.0.2.55" {
		t.Errorf("RealIP = %q, want CF header to win", ip)
	}
}
