package repository

import (
	"context"
	"database/sql"
	"strings"
)

// SlotRepo reads slot claims for the advisory availability and conflict
// endpoints. It never writes: claims are created only inside
// BookingRepo.Reserve so bookings and claims cannot drift apart. Results
// may be stale by the time the caller acts on them; only the reservation
// transaction is authoritative.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// BusyHours returns the claimed slot labels for a hall and date.
func (r *SlotRepo) BusyHours(ctx context.Context, hall int, date string) ([]string, error) {
	const q = `SELECT hour FROM busy_slots WHERE hall_number = ? AND date = ? ORDER BY hour`
	rows, err := r.db.QueryContext(ctx, q, hall, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hours := make([]string, 0)
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

// ConflictingHours returns which of the requested slot labels are already
// claimed for the hall and date.
func (r *SlotRepo) ConflictingHours(ctx context.Context, hall int, date string, labels []string) ([]string, error) {
	if len(labels) == 0 {
		return []string{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(labels)), ",")
	q := `SELECT hour FROM busy_slots WHERE hall_number = ? AND date = ? AND hour IN (` + placeholders + `) ORDER BY hour`
	args := make([]interface{}, 0, len(labels)+2)
	args = append(args, hall, date)
	for _, l := range labels {
		args = append(args, l)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conflicting := make([]string, 0)
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		conflicting = append(conflicting, h)
	}
	return conflicting, rows.Err()
}
