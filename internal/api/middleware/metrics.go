package middleware

import (
	"strconv"
	"time"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/driftwood-collective/server/internal/api/httperr"
	"github.com/driftwood-collective/server/internal/metrics"
)

// Metrics records request counts, latency, and in-flight gauge. The
// route label is the registered pattern, not the raw path, to keep
// cardinality bounded.
func Metrics() api.Middleware {
	return func(c *api.Context, next api.Next) error {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rw, ok := c.Response.(*responseWriter)
		if !ok {
			rw = &responseWriter{ResponseWriter: c.Response}
			c.Response = rw
		}

		err := next()

		route := c.RoutePattern
		if route == "" {
			route = "unmatched"
		}
		status := rw.status
		if err != nil {
			status = httperr.From(err).Status
		}
		if status == 0 {
			status = 200
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
