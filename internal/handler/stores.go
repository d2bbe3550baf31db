// Package handler contains the HTTP handlers of the banquet booking API.
package handler

import (
	"context"

	"github.com/rassvet/banquet-booking/internal/model"
)

// BookingStore is the slice of the booking repository the handlers need.
// It is an interface so tests can run against an isolated in-memory store
// instead of MySQL; the production implementation is repository.BookingRepo.
type BookingStore interface {
	// Reserve atomically persists the booking and claims every hour it
	// spans. It fails with repository.ErrSlotTaken when a concurrent
	// booking holds any overlapping slot.
	Reserve(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, bookingID string) (*model.Booking, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*model.Booking, error)
	UpdatePaymentStatus(ctx context.Context, bookingID, status, paymentRef string) error
	AttachPaymentRef(ctx context.Context, bookingID, paymentRef string) error
	ListByDate(ctx context.Context, date string) ([]model.Booking, error)
}

// SlotStore reads slot claims for the advisory availability and conflict
// endpoints. Implemented by repository.SlotRepo.
type SlotStore interface {
	BusyHours(ctx context.Context, hall int, date string) ([]string, error)
	ConflictingHours(ctx context.Context, hall int, date string, labels []string) ([]string, error)
}
