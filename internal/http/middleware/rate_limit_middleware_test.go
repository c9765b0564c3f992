package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisClientForTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return server, client
}

func serveN(t *testing.T, h http.Handler, n int, remoteAddr string) []int {
	t.Helper()
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	return codes
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestLocalRateLimiterDeniesAfterLimit(t *testing.T) {
	h := NewRateLimiter(2, time.Minute).Middleware()(okHandler())
	codes := serveN(t, h, 3, "10.0.0.1:1234")
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
	if other := serveN(t, h, 1, "10.0.0.2:1234"); other[0] != http.StatusOK {
		t.Fatalf("expected other client unaffected, got %v", other)
	}
}

func TestRedisRateLimiterSharesCountAndResets(t *testing.T) {
	server, client := newRedisClientForTest(t)
	limiter := NewRedisFixedWindowLimiter(client, "rl_test")
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	a := NewDistributedRateLimiter(limiter, 2, time.Minute, FailClosed, "auth").Middleware()(okHandler())
	b := NewDistributedRateLimiter(limiter, 2, time.Minute, FailClosed, "auth").Middleware()(okHandler())

	serveN(t, a, 1, "10.0.0.1:1")
	serveN(t, b, 1, "10.0.0.1:2")
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:3"
	rr := httptest.NewRecorder()
	a.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected shared counter to deny third request, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" || rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected rate limit headers, got %v", rr.Header())
	}

	now = now.Add(time.Minute)
	server.FastForward(time.Minute)
	if codes := serveN(t, a, 1, "10.0.0.1:4"); codes[0] != http.StatusOK {
		t.Fatalf("expected new window to allow, got %v", codes)
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, int, time.Duration) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func TestRateLimiterClampsSubMillisecondWindow(t *testing.T) {
	if rl := NewDistributedRateLimiter(NewLocalFixedWindowLimiter(), 1, 500*time.Microsecond, FailClosed, "api"); rl.window != time.Millisecond {
		t.Fatalf("window=%v want 1ms", rl.window)
	}

	_, client := newRedisClientForTest(t)
	limiter := NewRedisFixedWindowLimiter(client, "rl_tiny")
	d, err := limiter.Allow(context.Background(), "10.0.0.9", 1, time.Microsecond)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("expected first request allowed, got %+v", d)
	}
}

func TestRateLimiterFailureModes(t *testing.T) {
	open := NewDistributedRateLimiter(brokenLimiter{}, 1, time.Minute, FailOpen, "api").Middleware()(okHandler())
	if codes := serveN(t, open, 1, "10.0.0.1:1"); codes[0] != http.StatusOK {
		t.Fatalf("fail open should allow, got %v", codes)
	}
	closed := NewDistributedRateLimiter(brokenLimiter{}, 1, time.Minute, FailClosed, "api").Middleware()(okHandler())
	if codes := serveN(t, closed, 1, "10.0.0.1:1"); codes[0] != http.StatusTooManyRequests {
		t.Fatalf("fail closed should deny, got %v", codes)
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(CORS([]string{"https://app.projex.dev"})(okHandler()))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/workspaces", nil)
	req.Header.Set("Origin", "https://app.projex.dev")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://app.projex.dev" {
		t.Fatal("expected allowed origin echoed")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin must not be allowed")
	}
}
