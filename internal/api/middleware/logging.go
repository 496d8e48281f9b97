package middleware

import (
	"net/http"
	"time"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/driftwood-collective/server/internal/api/httperr"
	"github.com/rs/zerolog"
)

type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// RequestLogging logs one line per request with method, path, status,
// bytes written, and duration.
func RequestLogging(logger zerolog.Logger) api.Middleware {
	return func(c *api.Context, next api.Next) error {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: c.Response}
		c.Response = rw

		err := next()

		// The boundary writes error responses after the chain
		// unwinds, so derive the status it will use.
		status := rw.status
		if err != nil {
			status = httperr.From(err).Status
		}

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", rw.bytes).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}
