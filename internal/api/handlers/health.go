package handlers

import (
	"net/http"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/driftwood-collective/server/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Healthz(c *api.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func Readyz(c *api.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// Metrics exposes the Prometheus registry.
func Metrics() api.Handler {
	handler := promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
	return func(c *api.Context) error {
		handler.ServeHTTP(c.Response, c.Request)
		return nil
	}
}
