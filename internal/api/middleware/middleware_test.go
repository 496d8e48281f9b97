package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/driftwood-collective/server/internal/api/middleware"
	"github.com/driftwood-collective/server/internal/auth"
	"github.com/driftwood-collective/server/internal/config"
	"github.com/driftwood-collective/server/internal/storage/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func okHandler(c *api.Context) error {
	return c.Text(http.StatusOK, "ok")
}

func TestCorrelationIDGeneratesID(t *testing.T) {
	router := api.NewRouter("test")
	router.Use(middleware.CorrelationID(zerolog.Nop()))

	var seen string
	router.Get("/", func(c *api.Context) error {
		seen = middleware.GetRequestID(c.Request.Context())
		return okHandler(c)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestCorrelationIDHonorsProxyHeader(t *testing.T) {
	router := api.NewRouter("test")
	router.Use(middleware.CorrelationID(zerolog.Nop()))
	router.Get("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-from-proxy")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, "req-from-proxy", rec.Header().Get("X-Request-ID"))
}

func TestGetRequestIDOutsideRequest(t *testing.T) {
	require.Empty(t, middleware.GetRequestID(context.Background()))
}

func TestRateLimitThrottlesPerClient(t *testing.T) {
	router := api.NewRouter("test")
	router.Post("/login", okHandler, middleware.RateLimit(config.RateLimitConfig{
		LoginPerMinute: 60,
		Burst:          2,
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send("203.0.113.7:1000").Code)
	require.Equal(t, http.StatusOK, send("203.0.113.7:1001").Code)

	throttled := send("203.0.113.7:1002")
	require.Equal(t, http.StatusTooManyRequests, throttled.Code)
	require.NotEmpty(t, throttled.Header().Get("Retry-After"))

	// A different client has its own budget.
	require.Equal(t, http.StatusOK, send("198.51.100.4:1000").Code)
}

func TestRateLimitDisabledWhenZero(t *testing.T) {
	router := api.NewRouter("test")
	router.Post("/login", okHandler, middleware.RateLimit(config.RateLimitConfig{}))

	for range 10 {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLoadSessionAttachesSession(t *testing.T) {
	sessions := auth.NewSessions(memory.NewSessionStore(), time.Hour)
	session, err := sessions.Start(context.Background(), "user-1")
	require.NoError(t, err)

	router := api.NewRouter("test")
	router.Use(middleware.LoadSession(sessions))

	var attached *auth.Session
	router.Get("/", func(c *api.Context) error {
		attached = c.Session
		return okHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessions.Cookie(session))
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, attached)
	require.Equal(t, "user-1", attached.UserID)
}

func TestLoadSessionToleratesAnonymous(t *testing.T) {
	sessions := auth.NewSessions(memory.NewSessionStore(), time.Hour)
	router := api.NewRouter("test")
	router.Use(middleware.LoadSession(sessions))
	router.Get("/", okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSessionRedirects(t *testing.T) {
	router := api.NewRouter("test")
	router.Get("/dashboard", okHandler, middleware.RequireSession("/login"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?return=%2Fdashboard", rec.Header().Get("Location"))
}
