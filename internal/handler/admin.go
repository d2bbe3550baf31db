package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rassvet/banquet-booking/internal/config"
	"github.com/rassvet/banquet-booking/internal/utils"
)

// AdminHandler serves the back-office endpoints. Login is open; everything
// else sits behind the JWTAuth middleware.
type AdminHandler struct {
	Cfg      config.Config
	Bookings BookingStore
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(cfg config.Config, bookings BookingStore) *AdminHandler {
	if bookings == nil {
		panic("nil store passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Bookings: bookings}
}

type adminLoginReq struct {
	Password string `json:"password"`
}

// Login handles POST /api/admin/login. The admin password is configured
// as a bcrypt hash; a successful check issues a short-lived HS256 token.
func (h *AdminHandler) Login(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}
	if !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, "admin", h.Cfg.AdminTokenTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": tok.Token, "expires": tok.Exp})
}

// ListBookings handles GET /api/admin/bookings?date=YYYY-MM-DD.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	list, err := h.Bookings.ListByDate(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":     date,
		"count":    len(list),
		"bookings": list,
	})
}
