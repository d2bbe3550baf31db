package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rassvet/banquet-booking/internal/handler"
	"github.com/rassvet/banquet-booking/internal/middleware"
)

// RegisterAdmin mounts the back-office endpoints. Login is open so a
// token can be obtained; the rest of the group requires a valid admin
// token.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	e.POST("/api/admin/login", h.Login)

	g := e.Group("/api/admin", middleware.JWTAuth(jwtSecret))
	g.GET("/bookings", h.ListBookings)
}
