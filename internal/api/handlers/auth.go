package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/driftwood-collective/server/internal/api/httperr"
	"github.com/driftwood-collective/server/internal/audit"
	"github.com/driftwood-collective/server/internal/auth"
	"github.com/driftwood-collective/server/internal/domain/users"
)

// AuthHandler owns registration, login, and logout.
type AuthHandler struct {
	users    *users.Service
	sessions *auth.Sessions
	audit    *audit.Logger
}

func NewAuthHandler(userService *users.Service, sessions *auth.Sessions, auditLog *audit.Logger) *AuthHandler {
	return &AuthHandler{users: userService, sessions: sessions, audit: auditLog}
}

// Register handles POST /register: validate, reject duplicate emails
// before any event is emitted, emit user.registered, redirect to login.
func (h *AuthHandler) Register(c *api.Context) error {
	params := users.RegisterParams{
		Email:           c.FormValue("email"),
		Name:            c.FormValue("name"),
		Password:        c.FormValue("password"),
		PasswordConfirm: c.FormValue("password_confirm"),
	}

	if err := h.users.Register(c.Request.Context(), params); err != nil {
		var verr *users.ValidationError
		switch {
		case errors.As(err, &verr):
			return httperr.Validation(verr.Fields)
		case errors.Is(err, users.ErrEmailTaken):
			h.audit.Failure("register", c.Request, params.Email, "email taken")
			return httperr.Conflict("email is already taken")
		default:
			return fmt.Errorf("register: %w", err)
		}
	}

	h.audit.Success("register", c.Request, "", params.Email)
	return c.Redirect(http.StatusFound, "/login")
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(c *api.Context) error {
	c.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response.WriteHeader(http.StatusOK)
	_, err := fmt.Fprint(c.Response, loginPage)
	return err
}

// Login handles POST /login: verify credentials, start a session, set
// the cookie, and honor a local return target.
func (h *AuthHandler) Login(c *api.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	user, err := h.users.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.audit.Failure("login", c.Request, email, "invalid credentials")
			return httperr.Unauthorized("invalid email or password")
		}
		return fmt.Errorf("authenticate: %w", err)
	}

	session, err := h.sessions.Start(c.Request.Context(), user.ID)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	c.SetCookie(h.sessions.Cookie(session))
	_ = h.sessions.Flash(c.Request.Context(), session.ID, "success", "welcome back")
	h.audit.Success("login", c.Request, user.ID, user.Email)

	return c.Redirect(http.StatusFound, returnTarget(c))
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *api.Context) error {
	if c.Session != nil {
		if err := h.sessions.End(c.Request.Context(), c.Session.ID); err != nil {
			return fmt.Errorf("end session: %w", err)
		}
		h.audit.Success("logout", c.Request, c.Session.UserID, "")
	}
	c.SetCookie(h.sessions.ClearCookie())
	return c.Redirect(http.StatusFound, "/login")
}

// returnTarget resolves the post-login destination, accepting only
// local paths so the return parameter cannot become an open redirect.
func returnTarget(c *api.Context) string {
	target := c.Query().Get("return")
	if target == "" {
		target = c.FormValue("return")
	}
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	return "/dashboard"
}

const loginPage = `<!doctype html>
<title>Sign in</title>
<form method="post" action="/login">
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Sign in</button>
</form>
`
