package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/driftwood-collective/server/internal/api/httperr"
	"github.com/driftwood-collective/server/internal/auth"
	"github.com/rs/zerolog"
)

// Context is the per-request mutable bag threaded through middleware
// and handlers. It is created fresh per inbound request, owned by that
// request's goroutine, and discarded after the response is produced;
// it must never be retained past the response.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter

	// Params holds the named :segment captures of the matched route.
	Params map[string]string
	// RoutePattern is the raw pattern of the matched route, or "" when
	// no route matched. Used as the metrics label.
	RoutePattern string
	// Session is attached by the auth middleware when a valid session
	// cookie is present.
	Session *auth.Session

	values map[string]any
}

func newContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{
		Request:  r,
		Response: w,
		Params:   map[string]string{},
	}
}

type requestContextKey struct{}

// FromContext returns the request's Context from arbitrarily deep call
// chains. Calling it outside an active request is a programmer error
// and panics rather than returning a default.
func FromContext(ctx context.Context) *Context {
	c, ok := ctx.Value(requestContextKey{}).(*Context)
	if !ok {
		panic("api: FromContext called outside an active request")
	}
	return c
}

// Param returns the named route parameter, or "".
func (c *Context) Param(name string) string {
	return c.Params[name]
}

// Query returns the parsed query parameters.
func (c *Context) Query() url.Values {
	return c.Request.URL.Query()
}

// Set attaches a request-scoped extension value.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = map[string]any{}
	}
	c.values[key] = value
}

// Get reads a request-scoped extension value.
func (c *Context) Get(key string) (any, bool) {
	value, ok := c.values[key]
	return value, ok
}

// Logger returns the request-scoped logger injected by the correlation
// middleware.
func (c *Context) Logger() *zerolog.Logger {
	return zerolog.Ctx(c.Request.Context())
}

// Bind decodes the JSON request body into v.
func (c *Context) Bind(v any) error {
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil {
		return httperr.BadRequest("invalid request body").Wrap(err)
	}
	return nil
}

// FormValue returns the named form field, parsing the body on first use.
func (c *Context) FormValue(name string) string {
	return c.Request.FormValue(name)
}

// JSON writes a JSON response with the given status.
func (c *Context) JSON(status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(status)
	_, werr := c.Response.Write(payload)
	return werr
}

// Text writes a plain-text response with the given status.
func (c *Context) Text(status int, body string) error {
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(status)
	_, err := c.Response.Write([]byte(body))
	return err
}

// Redirect signals a redirect through the error channel; the router
// boundary renders the 3xx with the Location header and no body.
func (c *Context) Redirect(status int, location string) error {
	return httperr.Redirect(status, location)
}

// SetCookie adds a Set-Cookie header to the response.
func (c *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.Response, cookie)
}
