// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rassvet/banquet-booking/internal/handler"
)

// RegisterRoutes registers routes that carry no middleware. Currently it
// exposes only the health check used by load balancers and uptime
// monitors.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", handler.Health)
}
