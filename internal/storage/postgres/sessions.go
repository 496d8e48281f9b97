package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/driftwood-collective/server/internal/auth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionStore struct {
	pool *pgxpool.Pool
}

func (s *SessionStore) Create(ctx context.Context, session *auth.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, created_at, expires_at, flashes)
		VALUES ($1, $2, $3, $4, '[]'::jsonb)
	`
	if _, err := s.pool.Exec(ctx, query, session.ID, session.UserID, session.CreatedAt, session.ExpiresAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get enforces expiry at read time: an expired row is deleted on access.
func (s *SessionStore) Get(ctx context.Context, id string) (*auth.Session, error) {
	const query = `
		SELECT id, user_id, created_at, expires_at
		FROM sessions WHERE id = $1
	`
	var session auth.Session
	err := s.pool.QueryRow(ctx, query, id).Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNoSession
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if session.Expired(time.Now()) {
		_ = s.Delete(ctx, id)
		return nil, auth.ErrNoSession
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) PushFlash(ctx context.Context, sessionID string, flash auth.Flash) error {
	payload, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	const query = `
		UPDATE sessions SET flashes = flashes || $2::jsonb WHERE id = $1
	`
	if _, err := s.pool.Exec(ctx, query, sessionID, payload); err != nil {
		return fmt.Errorf("push flash: %w", err)
	}
	return nil
}

func (s *SessionStore) PopFlashes(ctx context.Context, sessionID string) ([]auth.Flash, error) {
	const query = `
		UPDATE sessions SET flashes = '[]'::jsonb
		WHERE id = $1
		RETURNING (SELECT flashes FROM sessions WHERE id = $1)
	`
	var raw []byte
	err := s.pool.QueryRow(ctx, query, sessionID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pop flashes: %w", err)
	}
	var flashes []auth.Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil, fmt.Errorf("decode flashes: %w", err)
	}
	return flashes, nil
}
