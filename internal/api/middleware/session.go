package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/driftwood-collective/server/internal/api/httperr"
	"github.com/driftwood-collective/server/internal/auth"
)

// LoadSession resolves the session cookie and attaches the session to
// the request context. Absence is not a failure; protected routes add
// RequireSession on top.
func LoadSession(sessions *auth.Sessions) api.Middleware {
	return func(c *api.Context, next api.Next) error {
		session, err := sessions.FromRequest(c.Request.Context(), c.Request)
		if err != nil {
			if !errors.Is(err, auth.ErrNoSession) {
				return httperr.Internal(err)
			}
			return next()
		}
		c.Session = session
		return next()
	}
}

// RequireSession short-circuits unauthenticated requests with a
// redirect to the login path, carrying the originally requested path in
// the return query parameter.
func RequireSession(loginPath string) api.Middleware {
	return func(c *api.Context, next api.Next) error {
		if c.Session == nil {
			location := loginPath + "?return=" + url.QueryEscape(c.Request.URL.Path)
			return httperr.Redirect(http.StatusFound, location)
		}
		return next()
	}
}
