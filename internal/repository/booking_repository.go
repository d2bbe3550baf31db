package repository

import (
	"context"
	"database/sql"

	"github.com/rassvet/banquet-booking/internal/model"
)

// BookingRepo persists bookings together with the slot claims they span.
// Reservation writes run inside a single transaction so a booking row can
// never exist without its busy_slots rows, and vice versa. No other
// component writes either table.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Reserve inserts the booking and one busy_slots row per spanned hour as
// one atomic unit. The UNIQUE(hall_number, date, hour) key on busy_slots
// is the authority on double-booking: when a concurrent transaction has
// already claimed any of the hours the insert fails, the whole transaction
// rolls back and ErrSlotTaken is returned. There is deliberately no
// check-then-insert here; advisory availability reads live in SlotRepo.
func (r *BookingRepo) Reserve(ctx context.Context, b *model.Booking) error {
	menuJSON, err := model.EncodeMenuItems(b.MenuItems)
	if err != nil {
		return err
	}
	start, err := model.ParseHour(b.Time)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const insBooking = `INSERT INTO bookings
		(booking_id, hall_number, date, time, duration, guests, name, phone, email, comments, menu_items, total_amount, payment_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insBooking,
		b.BookingID, b.HallNumber, b.Date, b.Time, b.Duration, b.Guests,
		b.Name, b.Phone, b.Email, b.Comments, menuJSON, b.TotalAmount, model.PaymentPending,
	); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateBooking
		}
		return err
	}

	labels := model.SpanLabels(start, b.Duration)
	query := `INSERT INTO busy_slots (hall_number, date, hour, booking_id) VALUES `
	args := make([]interface{}, 0, len(labels)*4)
	for i, label := range labels {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, b.HallNumber, b.Date, label, b.BookingID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrSlotTaken
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	b.PaymentStatus = model.PaymentPending
	return nil
}

const bookingColumns = `booking_id, hall_number, date, time, duration, guests, name, phone, email,
	comments, menu_items, total_amount, payment_status, payment_id, created_at, updated_at`

// GetByID loads one booking with its menu items decoded.
func (r *BookingRepo) GetByID(ctx context.Context, bookingID string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = ?`
	return r.getOne(ctx, q, bookingID)
}

// GetByPaymentID finds the booking holding the given provider payment id.
// Used by the webhook path when a notification arrives without booking
// metadata.
func (r *BookingRepo) GetByPaymentID(ctx context.Context, paymentID string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_id = ?`
	return r.getOne(ctx, q, paymentID)
}

func (r *BookingRepo) getOne(ctx context.Context, query string, arg interface{}) (*model.Booking, error) {
	var b model.Booking
	var comments, menuJSON sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&b.BookingID, &b.HallNumber, &b.Date, &b.Time, &b.Duration, &b.Guests,
		&b.Name, &b.Phone, &b.Email, &comments, &menuJSON, &b.TotalAmount,
		&b.PaymentStatus, &b.PaymentID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Comments = comments.String
	items, err := model.DecodeMenuItems(menuJSON.String)
	if err != nil {
		return nil, err
	}
	b.MenuItems = items
	return &b, nil
}

// UpdatePaymentStatus records the outcome reported by the payment
// provider. When paymentRef is non-empty it is stored alongside the status
// so later notifications can be correlated even without metadata. The
// caller is expected to have resolved the booking first; updating an
// unknown id is a no-op.
func (r *BookingRepo) UpdatePaymentStatus(ctx context.Context, bookingID, status, paymentRef string) error {
	const q = `UPDATE bookings
		SET payment_status = ?, payment_id = IF(? = '', payment_id, ?)
		WHERE booking_id = ?`
	_, err := r.db.ExecContext(ctx, q, status, paymentRef, paymentRef, bookingID)
	return err
}

// AttachPaymentRef stores the provider payment id on a booking after a
// payment is created, without touching the payment status.
func (r *BookingRepo) AttachPaymentRef(ctx context.Context, bookingID, paymentRef string) error {
	const q = `UPDATE bookings SET payment_id = ? WHERE booking_id = ?`
	_, err := r.db.ExecContext(ctx, q, paymentRef, bookingID)
	return err
}

// ListByDate returns the bookings for one calendar date ordered by hall
// and start time. Used by the admin endpoints.
func (r *BookingRepo) ListByDate(ctx context.Context, date string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE date = ? ORDER BY hall_number, time`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		var comments, menuJSON sql.NullString
		if err := rows.Scan(
			&b.BookingID, &b.HallNumber, &b.Date, &b.Time, &b.Duration, &b.Guests,
			&b.Name, &b.Phone, &b.Email, &comments, &menuJSON, &b.TotalAmount,
			&b.PaymentStatus, &b.PaymentID, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		b.Comments = comments.String
		items, err := model.DecodeMenuItems(menuJSON.String)
		if err != nil {
			return nil, err
		}
		b.MenuItems = items
		out = append(out, b)
	}
	return out, rows.Err()
}
