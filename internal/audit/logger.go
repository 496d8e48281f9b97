package audit

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Entry is a single audit record for an authentication-related action.
type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	IPAddress string            `json:"ip_address"`
	Status    string            `json:"status"` // "success" or "failure"
	Details   map[string]string `json:"details,omitempty"`
}

// Logger records who did what to the account surface: registrations,
// logins, logouts. Entries land in the main log stream tagged audit=true
// so they can be filtered into a separate retention pipeline.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Bool("audit", true).Logger()}
}

func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	event := l.logger.Info().
		Time("timestamp", entry.Timestamp).
		Str("action", entry.Action).
		Str("status", entry.Status).
		Str("ip_address", entry.IPAddress)
	if entry.UserID != "" {
		event = event.Str("user_id", entry.UserID)
	}
	if entry.Email != "" {
		event = event.Str("email", entry.Email)
	}
	for key, value := range entry.Details {
		event = event.Str("detail_"+key, value)
	}
	event.Msg("audit")
}

// Success records a completed action.
func (l *Logger) Success(action string, r *http.Request, userID, email string) {
	l.Log(Entry{
		Action:    action,
		UserID:    userID,
		Email:     email,
		IPAddress: ClientIP(r),
		Status:    "success",
	})
}

// Failure records a rejected action with a reason.
func (l *Logger) Failure(action string, r *http.Request, email, reason string) {
	l.Log(Entry{
		Action:    action,
		Email:     email,
		IPAddress: ClientIP(r),
		Status:    "failure",
		Details:   map[string]string{"reason": reason},
	})
}

// ClientIP extracts the remote address without the port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
