package model

import (
	"encoding/json"
	"time"
)

// Payment status lifecycle. A booking is created in pending and moves to
// paid or canceled when the payment provider reports the outcome.
// waiting_for_capture is the transitional state of two-phase payments.
const (
	PaymentPending        = "pending"
	PaymentPaid           = "paid"
	PaymentCanceled       = "canceled"
	PaymentWaitingCapture = "waiting_for_capture"
)

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentCanceled, PaymentWaitingCapture:
		return true
	}
	return false
}

// MenuItem is one ordered dish line attached to a booking. Order of lines
// is significant and preserved through storage.
type MenuItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Booking is a customer's reservation of a hall for a contiguous range of
// hourly slots, together with contact and billing details. Bookings are
// never deleted; cancellation is a payment status transition.
type Booking struct {
	BookingID     string     `json:"booking_id"`
	HallNumber    int        `json:"hall_number"`
	Date          string     `json:"date"`     // YYYY-MM-DD
	Time          string     `json:"time"`     // start slot label, HH:00
	Duration      int        `json:"duration"` // whole hours, >= 1
	Guests        string     `json:"guests"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	Comments      string     `json:"comments"`
	MenuItems     []MenuItem `json:"menu_items"`
	TotalAmount   float64    `json:"total_amount"`
	PaymentStatus string     `json:"payment_status"`
	PaymentID     string     `json:"payment_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// EncodeMenuItems serializes menu items into the JSON text stored in the
// bookings table. A nil slice encodes as an empty list.
func EncodeMenuItems(items []MenuItem) (string, error) {
	if items == nil {
		items = []MenuItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeMenuItems restores the ordered menu lines from their stored form.
// Empty input decodes to an empty list.
func DecodeMenuItems(raw string) ([]MenuItem, error) {
	if raw == "" {
		return []MenuItem{}, nil
	}
	var items []MenuItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []MenuItem{}
	}
	return items, nil
}
