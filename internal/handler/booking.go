package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rassvet/banquet-booking/internal/model"
	"github.com/rassvet/banquet-booking/internal/queue"
	"github.com/rassvet/banquet-booking/internal/repository"
	"github.com/rassvet/banquet-booking/internal/utils"
)

// BookingHandler serves the availability, slot-check, creation and lookup
// endpoints. The two GET endpoints are advisory reads: their answers may
// be stale by the time a client acts on them, and only Reserve decides who
// gets a slot.
type BookingHandler struct {
	Bookings BookingStore
	Slots    SlotStore
	// Publish, when set, is invoked after a reservation commits. Failures
	// inside it must not affect the response; it is best-effort.
	Publish func(ctx context.Context, ev queue.BookingCreatedEvent)
}

// NewBookingHandler constructs a BookingHandler. Both stores are required.
func NewBookingHandler(bookings BookingStore, slots SlotStore) *BookingHandler {
	if bookings == nil || slots == nil {
		panic("nil store passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Slots: slots}
}

// Availability handles GET /api/booking/availability?date=&hall=. It
// subtracts the recorded claims from the full slot grid.
func (h *BookingHandler) Availability(c echo.Context) error {
	date := c.QueryParam("date")
	hallStr := c.QueryParam("hall")
	if date == "" || hallStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and hall are required"})
	}
	hall, err := strconv.Atoi(hallStr)
	if err != nil || hall <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall"})
	}

	busy, err := h.Slots.BusyHours(c.Request().Context(), hall, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	busySet := make(map[string]struct{}, len(busy))
	for _, b := range busy {
		busySet[b] = struct{}{}
	}
	all := model.HourLabels()
	available := make([]string, 0, len(all))
	for _, slot := range all {
		if _, ok := busySet[slot]; !ok {
			available = append(available, slot)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":            date,
		"hall":            hall,
		"available_slots": available,
		"busy_slots":      busy,
		"total_slots":     len(all),
	})
}

// CheckSlot handles GET /api/booking/check-slot?date=&hall=&time=&duration=.
// A span that runs past closing is reported as available=false with a
// reason rather than rejected: the input is well-formed, the venue just is
// not open that long.
func (h *BookingHandler) CheckSlot(c echo.Context) error {
	date := c.QueryParam("date")
	hallStr := c.QueryParam("hall")
	timeStr := c.QueryParam("time")
	if date == "" || hallStr == "" || timeStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date, hall and time are required"})
	}
	hall, err := strconv.Atoi(hallStr)
	if err != nil || hall <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall"})
	}
	duration := model.DefaultDuration
	if d := c.QueryParam("duration"); d != "" {
		duration, err = strconv.Atoi(d)
		if err != nil || duration < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid duration"})
		}
	}
	start, err := model.ParseHour(timeStr)
	if err != nil || !model.InOperatingHours(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time"})
	}
	if !model.FitsOperatingHours(start, duration) {
		return c.JSON(http.StatusOK, echo.Map{
			"available": false,
			"reason":    "booking exceeds operating hours",
			"date":      date,
			"hall":      hall,
			"time":      timeStr,
			"duration":  duration,
		})
	}

	requested := model.SpanLabels(start, duration)
	conflicting, err := h.Slots.ConflictingHours(c.Request().Context(), hall, date, requested)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available":         len(conflicting) == 0,
		"conflicting_slots": conflicting,
		"requested_slots":   requested,
		"date":              date,
		"hall":              hall,
		"time":              timeStr,
		"duration":          duration,
	})
}

type createBookingReq struct {
	Hall      int              `json:"hall"`
	Date      string           `json:"date"`
	Time      string           `json:"time"`
	Duration  int              `json:"duration"`
	Guests    string           `json:"guests"`
	Name      string           `json:"name"`
	Phone     string           `json:"phone"`
	Email     string           `json:"email"`
	Comments  string           `json:"comments"`
	MenuItems []model.MenuItem `json:"menuItems"`
	Total     float64          `json:"total"`
}

// Create handles POST /api/booking/create. Validation is done up front;
// the actual claim on the slots happens inside Reserve, and losing the
// race there comes back as 409 so the client can offer a different time.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request body"})
	}
	if req.Hall <= 0 || req.Date == "" || req.Time == "" || req.Name == "" || req.Phone == "" || req.Total <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "hall, date, time, name, phone and total are required"})
	}
	if req.Duration == 0 {
		req.Duration = model.DefaultDuration
	}
	if req.Duration < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid duration"})
	}
	if req.Guests == "" {
		req.Guests = "1-10"
	}
	start, err := model.ParseHour(req.Time)
	if err != nil || !model.InOperatingHours(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid time"})
	}
	if !model.FitsOperatingHours(start, req.Duration) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "booking exceeds operating hours"})
	}

	bookingID, err := utils.NewBookingID()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to generate booking id"})
	}
	b := &model.Booking{
		BookingID:   bookingID,
		HallNumber:  req.Hall,
		Date:        req.Date,
		Time:        model.HourLabel(start),
		Duration:    req.Duration,
		Guests:      req.Guests,
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Comments:    req.Comments,
		MenuItems:   req.MenuItems,
		TotalAmount: req.Total,
	}

	if err := h.Bookings.Reserve(c.Request().Context(), b); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "slot was just taken, please pick another time"})
		case errors.Is(err, repository.ErrDuplicateBooking):
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "please retry the booking"})
		default:
			log.Printf("reserve %s failed: %v", bookingID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to save booking"})
		}
	}

	if h.Publish != nil {
		h.Publish(c.Request().Context(), queue.BookingCreatedEvent{
			BookingID:   b.BookingID,
			HallNumber:  b.HallNumber,
			Date:        b.Date,
			Time:        b.Time,
			Duration:    b.Duration,
			Name:        b.Name,
			Phone:       b.Phone,
			TotalAmount: b.TotalAmount,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"booking_id": b.BookingID,
		"message":    "booking created",
	})
}

// Get handles GET /api/booking/:bookingID.
func (h *BookingHandler) Get(c echo.Context) error {
	id := c.Param("bookingID")
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "booking": b})
}
