package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/driftwood-collective/server/internal/api/httperr"
	"github.com/stretchr/testify/require"
)

func perform(rt *Router, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestRouteParams(t *testing.T) {
	rt := NewRouter("test")
	rt.Get("/posts/:id", func(c *Context) error {
		return c.Text(http.StatusOK, c.Param("id"))
	})

	rec := perform(rt, http.MethodGet, "/posts/42")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "42", rec.Body.String())

	rec = perform(rt, http.MethodGet, "/posts/42/comments")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFirstRegisteredRouteWins(t *testing.T) {
	rt := NewRouter("test")
	rt.Get("/posts/:id", func(c *Context) error {
		return c.Text(http.StatusOK, "param")
	})
	rt.Get("/posts/new", func(c *Context) error {
		return c.Text(http.StatusOK, "literal")
	})

	rec := perform(rt, http.MethodGet, "/posts/new")

	// Registration order is load-bearing: the earlier :id route matches.
	require.Equal(t, "param", rec.Body.String())
}

func TestMethodDistinguishesRoutes(t *testing.T) {
	rt := NewRouter("test")
	rt.Get("/posts", func(c *Context) error { return c.Text(http.StatusOK, "list") })
	rt.Post("/posts", func(c *Context) error { return c.Text(http.StatusCreated, "created") })

	require.Equal(t, "list", perform(rt, http.MethodGet, "/posts").Body.String())
	require.Equal(t, "created", perform(rt, http.MethodPost, "/posts").Body.String())
}

func TestMiddlewareOrdering(t *testing.T) {
	var order []string
	record := func(name string) Middleware {
		return func(c *Context, next Next) error {
			order = append(order, name)
			return next()
		}
	}

	rt := NewRouter("test")
	rt.Use(record("global"))
	rt.Group("/admin", func(g *Group) {
		g.Get("/stats", func(c *Context) error {
			order = append(order, "handler")
			return c.Text(http.StatusOK, "ok")
		}, record("route"))
		g.Use(record("group-use"))
	}, record("group-ctor"))

	rec := perform(rt, http.MethodGet, "/admin/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"global", "group-ctor", "group-use", "route", "handler"}, order)
}

func TestMiddlewareShortCircuit(t *testing.T) {
	handlerRan := false
	rt := NewRouter("test")
	rt.Use(func(c *Context, next Next) error {
		return c.Text(http.StatusServiceUnavailable, "maintenance")
	})
	rt.Get("/", func(c *Context) error {
		handlerRan = true
		return nil
	})

	rec := perform(rt, http.MethodGet, "/")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.False(t, handlerRan, "handler must not run after a short-circuit")
}

func TestNoMatchRunsGlobalMiddleware(t *testing.T) {
	observed := false
	rt := NewRouter("test")
	rt.Use(func(c *Context, next Next) error {
		observed = true
		return next()
	})

	rec := perform(rt, http.MethodGet, "/nowhere")

	require.True(t, observed, "global middleware observes unmatched requests")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, httperr.CodeNotFound, errorCode(t, rec))
	require.Contains(t, rec.Body.String(), "GET /nowhere")
}

func TestRedirectSignal(t *testing.T) {
	rt := NewRouter("test")
	rt.Post("/register", func(c *Context) error {
		return c.Redirect(http.StatusFound, "/login")
	})

	rec := perform(rt, http.MethodPost, "/register")

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
	require.Zero(t, rec.Body.Len())
}

func TestPanicContainment(t *testing.T) {
	rt := NewRouter("production")
	rt.Get("/boom", func(c *Context) error {
		panic("handler bug")
	})

	rec := perform(rt, http.MethodGet, "/boom")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, httperr.CodeServerError, errorCode(t, rec))
	require.NotContains(t, rec.Body.String(), "handler bug")
}

func TestLazyHandlerResolvedOncePerRoute(t *testing.T) {
	loads := 0
	rt := NewRouter("test")
	rt.Get("/deferred", func() (any, error) {
		loads++
		return func(c *Context) error {
			return c.Text(http.StatusOK, "loaded")
		}, nil
	})

	require.Equal(t, "loaded", perform(rt, http.MethodGet, "/deferred").Body.String())
	require.Equal(t, "loaded", perform(rt, http.MethodGet, "/deferred").Body.String())
	require.Equal(t, 1, loads, "resolution must be cached after the first match")
}

func TestLazyHandlerModuleMiddlewareInnermost(t *testing.T) {
	var order []string
	rt := NewRouter("test")
	rt.Get("/deferred", func() (any, error) {
		return Module{
			Handler: func(c *Context) error {
				order = append(order, "handler")
				return c.Text(http.StatusOK, "ok")
			},
			Middleware: []Middleware{func(c *Context, next Next) error {
				order = append(order, "module")
				return next()
			}},
		}, nil
	}, func(c *Context, next Next) error {
		order = append(order, "route")
		return next()
	})

	perform(rt, http.MethodGet, "/deferred")

	require.Equal(t, []string{"route", "module", "handler"}, order)
}

func TestLazyHandlerBadShapeIsServerFault(t *testing.T) {
	rt := NewRouter("production")
	rt.Get("/broken", func() (any, error) {
		return 42, nil
	})

	rec := perform(rt, http.MethodGet, "/broken")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLazyHandlerLoaderError(t *testing.T) {
	rt := NewRouter("production")
	rt.Get("/broken", func() (any, error) {
		return nil, errors.New("module missing")
	})

	rec := perform(rt, http.MethodGet, "/broken")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAmbientContextReachesDeepCalls(t *testing.T) {
	rt := NewRouter("test")
	rt.Get("/posts/:id", func(c *Context) error {
		// A rendering helper far below the handler only holds the
		// stdlib context, not the request Context.
		id := deeplyNestedHelper(c.Request.Context())
		return c.Text(http.StatusOK, id)
	})

	rec := perform(rt, http.MethodGet, "/posts/7")

	require.Equal(t, "7", rec.Body.String())
}

func deeplyNestedHelper(ctx context.Context) string {
	return FromContext(ctx).Param("id")
}

func TestFromContextOutsideRequestPanics(t *testing.T) {
	require.Panics(t, func() {
		FromContext(context.Background())
	})
}

func TestStaticServesFilesOnNoMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o644))

	rt := NewRouter("test")
	rt.Static(dir)
	rt.Get("/app.css", func(c *Context) error {
		return c.Text(http.StatusOK, "route wins")
	})

	// A registered route shadows the static mount.
	require.Equal(t, "route wins", perform(rt, http.MethodGet, "/app.css").Body.String())

	rec := perform(rt, http.MethodGet, "/missing.css")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rt2 := NewRouter("test")
	rt2.Static(dir)
	rec = perform(rt2, http.MethodGet, "/app.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())
}

func TestStaticRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "public"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("secret"), 0o644))

	rt := NewRouter("test")
	rt.Static(filepath.Join(dir, "public"))

	rec := perform(rt, http.MethodGet, "/../secret.txt")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
