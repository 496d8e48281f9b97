package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/driftwood-collective/server/internal/api/httperr"
	"github.com/driftwood-collective/server/internal/auth"
	"github.com/driftwood-collective/server/internal/domain/users"
)

type PagesHandler struct {
	users    *users.Service
	sessions *auth.Sessions
}

func NewPagesHandler(userService *users.Service, sessions *auth.Sessions) *PagesHandler {
	return &PagesHandler{users: userService, sessions: sessions}
}

func (h *PagesHandler) Home(c *api.Context) error {
	return c.Text(http.StatusOK, "Driftwood")
}

type userView struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name"`
	JoinedAt string `json:"joined_at"`
}

type dashboardView struct {
	User    userView     `json:"user"`
	Flashes []auth.Flash `json:"flashes"`
}

// Dashboard handles GET /dashboard; RequireSession guarantees a session.
func (h *PagesHandler) Dashboard(c *api.Context) error {
	user, err := h.users.Get(c.Request.Context(), c.Session.UserID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			// The session outlived the user record.
			return httperr.Unauthorized("account no longer exists")
		}
		return fmt.Errorf("load user: %w", err)
	}

	flashes, err := h.sessions.PopFlashes(c.Request.Context(), c.Session.ID)
	if err != nil {
		return fmt.Errorf("pop flashes: %w", err)
	}
	if flashes == nil {
		flashes = []auth.Flash{}
	}

	return c.JSON(http.StatusOK, dashboardView{
		User: userView{
			ID:       user.ID,
			Email:    user.Email,
			Name:     user.Name,
			JoinedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		},
		Flashes: flashes,
	})
}

// Profile handles GET /users/:id, the public view without the email.
func (h *PagesHandler) Profile(c *api.Context) error {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return httperr.NotFound("no such user")
		}
		return fmt.Errorf("load user: %w", err)
	}
	return c.JSON(http.StatusOK, userView{
		ID:       user.ID,
		Name:     user.Name,
		JoinedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	})
}
