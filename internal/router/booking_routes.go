package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rassvet/banquet-booking/internal/handler"
)

// RegisterBooking mounts the reservation endpoints under /api/booking.
// The whole group sits behind the rate limiter; only the two advisory GET
// reads additionally go through the response cache — creation and lookup
// must always hit the store.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, limiter, cache echo.MiddlewareFunc) {
	g := e.Group("/api/booking", limiter)
	g.GET("/availability", h.Availability, cache)
	g.GET("/check-slot", h.CheckSlot, cache)
	g.POST("/create", h.Create)
	g.GET("/:bookingID", h.Get)
}
