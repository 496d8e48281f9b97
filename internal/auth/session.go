package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "session"

// DefaultSessionTTL is the session lifetime applied at creation.
const DefaultSessionTTL = 7 * 24 * time.Hour

var ErrNoSession = errors.New("no active session")

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Flash is a one-time-read notification stored against a session and
// cleared upon retrieval.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionStore persists sessions. Get must enforce expiry at read time:
// an expired session is deleted on access and reported as ErrNoSession.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	PushFlash(ctx context.Context, sessionID string, flash Flash) error
	PopFlashes(ctx context.Context, sessionID string) ([]Flash, error)
}

// Sessions issues, resolves, and ends cookie-backed sessions.
type Sessions struct {
	store SessionStore
	ttl   time.Duration
}

func NewSessions(store SessionStore, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{store: store, ttl: ttl}
}

// Start creates a session for userID.
func (s *Sessions) Start(ctx context.Context, userID string) (*Session, error) {
	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// FromRequest resolves the session referenced by the request's cookie.
// Missing cookie, unknown ID, and expired sessions all yield
// ErrNoSession.
func (s *Sessions) FromRequest(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	session, err := s.store.Get(ctx, cookie.Value)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		_ = s.store.Delete(ctx, session.ID)
		return nil, ErrNoSession
	}
	return session, nil
}

// End deletes the session.
func (s *Sessions) End(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Flash stores a one-time notification against the session.
func (s *Sessions) Flash(ctx context.Context, sessionID, kind, message string) error {
	return s.store.PushFlash(ctx, sessionID, Flash{Kind: kind, Message: message})
}

// PopFlashes retrieves and clears the session's flash messages.
func (s *Sessions) PopFlashes(ctx context.Context, sessionID string) ([]Flash, error) {
	return s.store.PopFlashes(ctx, sessionID)
}

// Cookie serializes the session into the response cookie: HttpOnly,
// SameSite=Lax, Path=/, Max-Age matching the session TTL.
func (s *Sessions) Cookie(session *Session) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie (Max-Age=0 on the wire).
func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
