package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/driftwood-collective/server/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RegistrationListener creates the durable user record when a
// user.registered event arrives. Delivery is at-least-once, so the
// handler checks for an existing record before writing.
type RegistrationListener struct {
	store  Store
	logger zerolog.Logger
}

func NewRegistrationListener(store Store, logger zerolog.Logger) *RegistrationListener {
	return &RegistrationListener{
		store:  store,
		logger: logger.With().Str("listener", "users.registration").Logger(),
	}
}

func (l *RegistrationListener) SubscribedTo() []string {
	return []string{EventUserRegistered}
}

func (l *RegistrationListener) Handle(ctx context.Context, event events.Event) error {
	var payload RegisteredPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	if payload.Email == "" {
		return fmt.Errorf("event %s has no email", event.ID)
	}

	if _, err := l.store.FindByEmail(ctx, payload.Email); err == nil {
		l.logger.Debug().Str("email", payload.Email).Msg("user already exists, skipping")
		return nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("check existing user: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        payload.Email,
		Name:         payload.Name,
		PasswordHash: payload.PasswordHash,
		CreatedAt:    time.UnixMilli(event.Timestamp),
	}
	if err := l.store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// A concurrent delivery won the race; the record exists.
			return nil
		}
		return fmt.Errorf("create user: %w", err)
	}

	l.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user created")
	return nil
}
