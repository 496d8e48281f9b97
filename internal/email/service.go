package email

import (
	"context"
	"fmt"

	"github.com/driftwood-collective/server/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Service sends transactional email through Resend. When no API key is
// configured it logs instead of sending, so dev and test environments
// need no credentials.
type Service struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) *Service {
	s := &Service{
		from:   cfg.From,
		logger: logger.With().Str("component", "email").Logger(),
	}
	if cfg.APIKey != "" {
		s.client = resend.NewClient(cfg.APIKey)
	}
	return s
}

// SendWelcome sends the post-registration welcome email.
func (s *Service) SendWelcome(ctx context.Context, to, name string) error {
	subject := "Welcome to Driftwood"
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your account is ready. Sign in to get started.</p>", name)

	if s.client == nil {
		s.logger.Info().Str("to", to).Str("subject", subject).Msg("email disabled, skipping send")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend API error: %w", err)
	}
	s.logger.Info().Str("to", to).Str("email_id", sent.Id).Msg("welcome email sent")
	return nil
}
