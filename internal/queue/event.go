// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// Queue names used on the broker.
const (
	BookingCreatedQueue = "booking.created"
	PaymentStatusQueue  = "payment.status"
)

// BookingCreatedEvent is published after a reservation transaction
// commits. It carries enough information for downstream consumers to log
// or notify without querying the primary database.
type BookingCreatedEvent struct {
	BookingID   string  `json:"booking_id"`
	HallNumber  int     `json:"hall_number"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Duration    int     `json:"duration"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	TotalAmount float64 `json:"total_amount"`
	CreatedAt   string  `json:"created_at"`
}

// PaymentStatusEvent records the outcome of a payment webhook, including
// internal processing failures: the webhook endpoint always acknowledges
// the provider, so this event is the trail operators follow up on.
type PaymentStatusEvent struct {
	BookingID  string `json:"booking_id"`
	PaymentID  string `json:"payment_id"`
	Event      string `json:"event"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
