package email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/driftwood-collective/server/internal/domain/users"
	"github.com/driftwood-collective/server/internal/events"
)

// WelcomeListener emails new users after registration. Delivery is
// at-least-once; a duplicate delivery means at worst a duplicate
// greeting, which is accepted rather than tracked.
type WelcomeListener struct {
	service *Service
}

func NewWelcomeListener(service *Service) *WelcomeListener {
	return &WelcomeListener{service: service}
}

func (l *WelcomeListener) SubscribedTo() []string {
	return []string{users.EventUserRegistered}
}

func (l *WelcomeListener) Handle(ctx context.Context, event events.Event) error {
	var payload users.RegisteredPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return l.service.SendWelcome(ctx, payload.Email, payload.Name)
}
