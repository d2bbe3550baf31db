package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rassvet/banquet-booking/internal/handler"
)

// RegisterPayment mounts the payment collaborator endpoints. The webhook
// deliberately stays outside the rate limiter: provider retries must
// never be throttled, the endpoint acknowledges everything anyway.
func RegisterPayment(e *echo.Echo, h *handler.PaymentHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/yookassa")
	g.POST("/create-payment", h.CreatePayment, limiter)
	g.POST("/webhook", h.Webhook)
}
