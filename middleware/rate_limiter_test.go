package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitMiddlewareBlocksAfterBurst(t *testing.T) {
	handler := RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/user", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	for i := 0; i < burstSize; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d within burst: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("request past burst: status = %d, want 429", rec.Code)
	}
}

func TestRateLimitMiddlewareIsolatesClients(t *testing.T) {
	handler := RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	exhausted := httptest.NewRequest("GET", "/api/v1/user", nil)
	exhausted.Header.Set("X-Forwarded-For", "203.0.113.8")
	for i := 0; i <= burstSize; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), exhausted)
	}

	other := httptest.NewRequest("GET", "/api/v1/user", nil)
	other.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("fresh client: status = %d, want 200", rec.Code)
	}
}
