package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/driftwood-collective/server/internal/auth"
	"github.com/driftwood-collective/server/internal/events"
	"github.com/driftwood-collective/server/internal/sanitize"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// EventUserRegistered is emitted once per successful registration.
const EventUserRegistered = "user.registered"

var ErrInvalidCredentials = errors.New("invalid email or password")

// RegisteredPayload is the user.registered event payload. The password
// travels only as a bcrypt hash.
type RegisteredPayload struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
}

// ValidationError carries per-field messages for a rejected registration.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d invalid fields", len(e.Fields))
}

type RegisterParams struct {
	Email           string `validate:"required,email"`
	Name            string `validate:"required,max=80"`
	Password        string `validate:"required,min=8"`
	PasswordConfirm string `validate:"required,eqfield=Password"`
}

// Service handles registration and credential checks. The durable user
// record itself is created by the RegistrationListener reacting to the
// emitted event, not by Register.
type Service struct {
	store    Store
	events   *events.Store
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(store Store, eventStore *events.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		events:   eventStore,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

// Register validates params, rejects duplicate emails before any event
// is emitted, and emits user.registered. The redirect-worthy success
// path returns nil with the event durably persisted.
func (s *Service) Register(ctx context.Context, params RegisterParams) error {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.Name = sanitize.Text(params.Name)

	if err := s.validate.Struct(params); err != nil {
		return &ValidationError{Fields: fieldMessages(err)}
	}

	// Duplicate check happens pre-emit: a taken email never produces
	// a second registration event.
	if _, err := s.store.FindByEmail(ctx, params.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	data, err := json.Marshal(RegisteredPayload{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	event := events.Event{Type: EventUserRegistered, Data: data}
	if err := s.events.Emit(ctx, &event); err != nil {
		return fmt.Errorf("emit %s: %w", EventUserRegistered, err)
	}

	s.logger.Info().Str("event_id", event.ID).Str("email", params.Email).Msg("registration accepted")
	return nil
}

// Authenticate resolves the user for a login attempt.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns the user by ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.store.FindByID(ctx, id)
}

func fieldMessages(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = err.Error()
		return fields
	}
	for _, ferr := range verrs {
		name := strings.ToLower(ferr.Field())
		switch ferr.Tag() {
		case "required":
			fields[name] = "is required"
		case "email":
			fields[name] = "must be a valid email address"
		case "min":
			fields[name] = fmt.Sprintf("must be at least %s characters", ferr.Param())
		case "max":
			fields[name] = fmt.Sprintf("must be at most %s characters", ferr.Param())
		case "eqfield":
			fields[name] = "does not match"
		default:
			fields[name] = "is invalid"
		}
	}
	return fields
}
