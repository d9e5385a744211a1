package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// setupLimiter spins up an in-process Redis and returns an Echo instance
// with a single rate-limited route.
func setupLimiter(t *testing.T, maxRequests int, window time.Duration) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(rdb, maxRequests, window))

	return e, mr
}

func doRequest(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	e, _ := setupLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		rec := doRequest(e, "10.1.1.1")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimit_BlocksOverMax(t *testing.T) {
	e, _ := setupLimiter(t, 2, time.Minute)

	doRequest(e, "10.1.1.2")
	doRequest(e, "10.1.1.2")

	rec := doRequest(e, "10.1.1.2")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
}

func TestRateLimit_SeparateIPsCountedIndependently(t *testing.T) {
	e, _ := setupLimiter(t, 1, time.Minute)

	if rec := doRequest(e, "10.1.1.3"); rec.Code != http.StatusOK {
		t.Fatalf("first IP first request: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(e, "10.1.1.3"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("first IP second request: expected 429, got %d", rec.Code)
	}
	// A different IP still has its own budget.
	if rec := doRequest(e, "10.1.1.4"); rec.Code != http.StatusOK {
		t.Fatalf("second IP: expected 200, got %d", rec.Code)
	}
}

func TestRateLimit_WindowResets(t *testing.T) {
	e, mr := setupLimiter(t, 1, time.Minute)

	doRequest(e, "10.1.1.5")
	if rec := doRequest(e, "10.1.1.5"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside window, got %d", rec.Code)
	}

	// Advance past the window; miniredis expires the counter key.
	mr.FastForward(2 * time.Minute)

	if rec := doRequest(e, "10.1.1.5"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after window reset, got %d", rec.Code)
	}
}

func TestRateLimit_FailsOpenWhenRedisDown(t *testing.T) {
	e, mr := setupLimiter(t, 1, time.Minute)
	mr.Close()

	// With Redis unreachable every request passes through.
	for i := 0; i < 3; i++ {
		if rec := doRequest(e, "10.1.1.6"); rec.Code != http.StatusOK {
			t.Fatalf("request %d with redis down: expected 200, got %d", i+1, rec.Code)
		}
	}
}
