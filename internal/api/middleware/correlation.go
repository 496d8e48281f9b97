package middleware

import (
	"context"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

// RequestIDKey is the context key for the request correlation ID
const RequestIDKey contextKey = "request_id"

// CorrelationID assigns each request a correlation ID (honoring an
// X-Request-ID header from a proxy) and injects a logger tagged with it
// into the request context.
func CorrelationID(logger zerolog.Logger) api.Middleware {
	return func(c *api.Context, next api.Next) error {
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response.Header().Set("X-Request-ID", requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		ctx := context.WithValue(c.Request.Context(), RequestIDKey, requestID)
		ctx = reqLogger.WithContext(ctx)
		c.Request = c.Request.WithContext(ctx)

		return next()
	}
}

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
