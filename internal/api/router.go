package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/driftwood-collective/server/internal/api/httperr"
)

// Handler produces the response for a matched route. Returning an error
// hands control to the router boundary, which converts it to a
// well-formed response exactly once.
type Handler func(c *Context) error

// Next invokes the rest of the chain. A middleware that never calls it
// short-circuits: nothing downstream runs.
type Next func() error

// Middleware is a composable request-processing step.
type Middleware func(c *Context, next Next) error

type route struct {
	method     string
	pattern    *compiledPattern
	handler    *handlerRef
	middleware []Middleware
}

// Router maps (method, path) to a handler and drives execution of the
// middleware chain. Routes are scanned in registration order and the
// first match wins; registration order is load-bearing.
type Router struct {
	routes     []*route
	global     []Middleware
	staticDirs []string
	env        string
}

func NewRouter(env string) *Router {
	return &Router{env: env}
}

// Use appends global middleware, run for every request, matched or not.
func (rt *Router) Use(middleware ...Middleware) {
	rt.global = append(rt.global, middleware...)
}

// Static registers a directory served for GET/HEAD requests that match
// no route, consulted before the 404 terminal.
func (rt *Router) Static(dir string) {
	rt.staticDirs = append(rt.staticDirs, dir)
}

func (rt *Router) Get(pattern string, handler any, middleware ...Middleware) {
	rt.handle(http.MethodGet, pattern, handler, middleware)
}

func (rt *Router) Post(pattern string, handler any, middleware ...Middleware) {
	rt.handle(http.MethodPost, pattern, handler, middleware)
}

func (rt *Router) Put(pattern string, handler any, middleware ...Middleware) {
	rt.handle(http.MethodPut, pattern, handler, middleware)
}

func (rt *Router) Patch(pattern string, handler any, middleware ...Middleware) {
	rt.handle(http.MethodPatch, pattern, handler, middleware)
}

func (rt *Router) Delete(pattern string, handler any, middleware ...Middleware) {
	rt.handle(http.MethodDelete, pattern, handler, middleware)
}

// handle accepts a Handler, a func(*Context) error, or a Loader for
// deferred resolution. Any other shape is a configuration error and
// panics at bootstrap, before traffic begins.
func (rt *Router) handle(method, pattern string, handler any, middleware []Middleware) {
	compiled, err := compilePattern(pattern)
	if err != nil {
		panic(fmt.Sprintf("api: %v", err))
	}

	var ref *handlerRef
	switch v := handler.(type) {
	case Handler:
		ref = direct(v)
	case func(*Context) error:
		ref = direct(v)
	case Loader:
		ref = deferred(v)
	case func() (any, error):
		ref = deferred(v)
	default:
		panic(fmt.Sprintf("api: route %s %s: unsupported handler type %T", method, pattern, handler))
	}

	rt.routes = append(rt.routes, &route{
		method:     method,
		pattern:    compiled,
		handler:    ref,
		middleware: middleware,
	})
}

func (rt *Router) match(method, path string) (*route, map[string]string) {
	for _, candidate := range rt.routes {
		if candidate.method != method {
			continue
		}
		if params, ok := candidate.pattern.match(path); ok {
			return candidate, params
		}
	}
	return nil, nil
}

// ServeHTTP is the single boundary: it builds the request Context,
// establishes the ambient binding, matches a route, executes the chain,
// and converts every failure (panics included) into a response. A
// per-request failure never crashes the process.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := newContext(w, r)
	r = r.WithContext(context.WithValue(r.Context(), requestContextKey{}, c))
	c.Request = r

	defer func() {
		if recovered := recover(); recovered != nil {
			stack := debug.Stack()
			err := httperr.Internal(fmt.Errorf("panic: %v", recovered))
			httperr.Write(w, c.Request, err, rt.env, stack)
		}
	}()

	chain := rt.global
	terminal := rt.notFound

	if matched, params := rt.match(r.Method, r.URL.Path); matched != nil {
		c.Params = params
		c.RoutePattern = matched.pattern.raw

		handler, moduleMiddleware, err := matched.handler.resolve()
		if err != nil {
			terminal = func(*Context) error { return httperr.Internal(err) }
		} else {
			terminal = handler
			chain = concat(rt.global, matched.middleware, moduleMiddleware)
		}
	}

	if err := execute(c, chain, terminal); err != nil {
		httperr.Write(c.Response, c.Request, err, rt.env, nil)
	}
}

// execute composes the ordered middleware plus the terminal handler
// into a single pull-based continuation.
func execute(c *Context, chain []Middleware, terminal Handler) error {
	var run func(i int) error
	run = func(i int) error {
		if i == len(chain) {
			return terminal(c)
		}
		return chain[i](c, func() error { return run(i + 1) })
	}
	return run(0)
}

// notFound terminates the global chain when no route matched, so global
// middleware observes every request. Static mounts are tried first.
func (rt *Router) notFound(c *Context) error {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		if rt.serveStatic(c) {
			return nil
		}
	}
	return httperr.NotFound(fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
}

func (rt *Router) serveStatic(c *Context) bool {
	relative := strings.TrimPrefix(c.Request.URL.Path, "/")
	for _, dir := range rt.staticDirs {
		path := filepath.Join(dir, filepath.FromSlash(relative))
		if !strings.HasPrefix(path, filepath.Clean(dir)+string(os.PathSeparator)) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		http.ServeFile(c.Response, c.Request, path)
		return true
	}
	return false
}

func concat(lists ...[]Middleware) []Middleware {
	var total int
	for _, list := range lists {
		total += len(list)
	}
	merged := make([]Middleware, 0, total)
	for _, list := range lists {
		merged = append(merged, list...)
	}
	return merged
}
