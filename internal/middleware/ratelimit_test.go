package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("general traffic stays within a generous budget", func(t *testing.T) {
		handler := NewRateLimitMiddleware(100, 1).Handler(next)

		for i := 0; i < 10; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
			req.RemoteAddr = "10.0.0.1:54321"
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		}
	})

	t.Run("auth endpoints hit the tighter budget", func(t *testing.T) {
		handler := NewRateLimitMiddleware(100, 1).Handler(next)

		rec1 := httptest.NewRecorder()
		req1 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req1.RemoteAddr = "10.0.0.2:54321"
		handler.ServeHTTP(rec1, req1)
		require.Equal(t, http.StatusOK, rec1.Code)

		rec2 := httptest.NewRecorder()
		req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req2.RemoteAddr = "10.0.0.2:54321"
		handler.ServeHTTP(rec2, req2)
		require.Equal(t, http.StatusTooManyRequests, rec2.Code)
		require.Equal(t, "60", rec2.Header().Get("Retry-After"))
	})

	t.Run("budgets are per client", func(t *testing.T) {
		handler := NewRateLimitMiddleware(100, 1).Handler(next)

		for _, ip := range []string{"10.0.0.3", "10.0.0.4"} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
			req.Header.Set("X-Forwarded-For", ip)
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, ip)
		}
	})

	t.Run("non positive limits fall back to defaults", func(t *testing.T) {
		mw := NewRateLimitMiddleware(0, -5)
		require.Equal(t, 100, mw.generalRPM)
		require.Equal(t, 10, mw.authRPM)
	})
}

func TestExtractClientIP(t *testing.T) {
	t.Parallel()

	t.Run("prefers the first forwarded entry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		require.Equal(t, "203.0.113.7", extractClientIP(req))
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "203.0.113.9")
		require.Equal(t, "203.0.113.9", extractClientIP(req))
	})

	t.Run("strips the port from the remote address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:33000"
		require.Equal(t, "192.0.2.1", extractClientIP(req))
	})
}
