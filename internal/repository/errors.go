// Package repository implements the durable store over MySQL. Sentinel
// errors defined here let handlers map storage outcomes to distinct HTTP
// responses without inspecting driver errors themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrSlotTaken is returned when a reservation loses the race for one of
// its hours: a concurrent booking claimed an overlapping slot first and
// the uniqueness constraint rejected the insert. Handlers translate this
// into HTTP 409 so the client can retry with a different slot.
var ErrSlotTaken = errors.New("slot already taken")

// ErrBookingNotFound is returned when no booking exists for the given
// identifier. Handlers translate this into HTTP 404.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicateBooking is returned when a generated booking identifier
// collides with an existing row. The store rejects the insert rather than
// overwriting.
var ErrDuplicateBooking = errors.New("duplicate booking id")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error 1062), the signal that a uniqueness constraint rejected an insert.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
