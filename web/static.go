// Package web holds assets that ship embedded in the server binary.
package web

import (
	_ "embed"
	"net/http"

	"github.com/driftwood-collective/server/internal/api"
)

//go:embed robots.txt
var robotsTxt []byte

// Robots serves the embedded robots.txt.
func Robots(c *api.Context) error {
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.Header().Set("Cache-Control", "public, max-age=86400") // Cache for 1 day
	c.Response.WriteHeader(http.StatusOK)
	_, err := c.Response.Write(robotsTxt)
	return err
}
