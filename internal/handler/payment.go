package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rassvet/banquet-booking/internal/model"
	"github.com/rassvet/banquet-booking/internal/payment"
	"github.com/rassvet/banquet-booking/internal/queue"
	"github.com/rassvet/banquet-booking/internal/repository"
)

// PaymentGateway is the payment collaborator as the handlers see it.
// Implemented by payment.Client.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, amount float64, description, returnURL string, metadata map[string]string, receipt *payment.Receipt) (*payment.Payment, error)
}

// PaymentHandler wires booking records to the payment provider.
type PaymentHandler struct {
	Bookings BookingStore
	Gateway  PaymentGateway
	// Publish, when set, records webhook outcomes (including internal
	// failures) on the message broker for operator follow-up.
	Publish func(ctx context.Context, ev queue.PaymentStatusEvent)
}

// NewPaymentHandler constructs a PaymentHandler. Both dependencies are
// required.
func NewPaymentHandler(bookings BookingStore, gateway PaymentGateway) *PaymentHandler {
	if bookings == nil || gateway == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Bookings: bookings, Gateway: gateway}
}

type createPaymentReq struct {
	BookingID string `json:"booking_id"`
	ReturnURL string `json:"return_url"`
}

// CreatePayment handles POST /api/yookassa/create-payment. The booking id
// travels to the provider inside payment metadata and comes back on every
// webhook; that is how notifications are correlated with bookings.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req createPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request body"})
	}
	if req.BookingID == "" || req.ReturnURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "booking_id and return_url are required"})
	}

	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "database error"})
	}
	if b.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "customer email is required to create a payment"})
	}

	receipt, err := payment.BuildReceipt(b)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}
	metadata := map[string]string{
		"booking_id": b.BookingID,
		"hall":       strconv.Itoa(b.HallNumber),
		"date":       b.Date,
		"time":       b.Time,
	}
	desc := fmt.Sprintf("Banquet hall %d booking %s", b.HallNumber, b.BookingID)

	p, err := h.Gateway.CreatePayment(ctx, b.TotalAmount, desc, req.ReturnURL, metadata, receipt)
	if err != nil {
		log.Printf("create payment for %s failed: %v", b.BookingID, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "error": "payment provider error"})
	}

	// Keep the provider's payment id next to the booking so webhooks
	// without metadata can still be matched.
	if err := h.Bookings.AttachPaymentRef(ctx, b.BookingID, p.ID); err != nil {
		log.Printf("attach payment ref %s to %s failed: %v", p.ID, b.BookingID, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":          true,
		"payment_id":       p.ID,
		"confirmation_url": p.ConfirmationURL(),
	})
}

// Webhook handles POST /api/yookassa/webhook. The provider is always
// acknowledged with 200: a non-2xx answer only triggers retry storms, so
// internal failures are logged and published for operator follow-up
// instead of being surfaced to the caller.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var n payment.Notification
	if err := c.Bind(&n); err != nil {
		log.Printf("webhook: undecodable notification: %v", err)
		return c.NoContent(http.StatusOK)
	}
	status, ok := paymentStatusFor(n.Event)
	if !ok {
		// Unrelated event type; acknowledge and move on.
		return c.NoContent(http.StatusOK)
	}

	ctx := c.Request().Context()
	bookingID := n.Object.Metadata["booking_id"]
	if bookingID == "" {
		if b, err := h.Bookings.GetByPaymentID(ctx, n.Object.ID); err == nil {
			bookingID = b.BookingID
		}
	}
	if bookingID == "" {
		h.record(ctx, queue.PaymentStatusEvent{
			PaymentID:  n.Object.ID,
			Event:      n.Event,
			Status:     status,
			Error:      "no booking found for payment",
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
		return c.NoContent(http.StatusOK)
	}

	ev := queue.PaymentStatusEvent{
		BookingID:  bookingID,
		PaymentID:  n.Object.ID,
		Event:      n.Event,
		Status:     status,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Bookings.UpdatePaymentStatus(ctx, bookingID, status, n.Object.ID); err != nil {
		log.Printf("webhook: update %s -> %s failed: %v", bookingID, status, err)
		ev.Error = err.Error()
	}
	h.record(ctx, ev)
	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) record(ctx context.Context, ev queue.PaymentStatusEvent) {
	if h.Publish != nil {
		h.Publish(ctx, ev)
	}
	if ev.Error != "" {
		log.Printf("webhook: payment %s booking %s: %s", ev.PaymentID, ev.BookingID, ev.Error)
	}
}

// paymentStatusFor maps provider webhook events onto the booking payment
// status lifecycle. A canceled payment does not release the booking's
// slots; freeing inventory stays an operator action.
func paymentStatusFor(event string) (string, bool) {
	switch event {
	case payment.EventPaymentSucceeded:
		return model.PaymentPaid, true
	case payment.EventPaymentCanceled:
		return model.PaymentCanceled, true
	case payment.EventPaymentWaitingCapture:
		return model.PaymentWaitingCapture, true
	}
	return "", false
}
