package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/bookingbot/booking"
)

type tx struct {
	tx *sqlx.Tx
}

func (t *tx) LockSlot(ctx context.Context, day booking.Day, start booking.Clock) (booking.Slot, error) {
	const q = `
SELECT day_of_week, start_time, end_time, available
FROM time_slots
WHERE day_of_week = $1 AND start_time = $2
FOR UPDATE`
	var slot booking.Slot
	err := t.tx.GetContext(ctx, &slot, q, day, start)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Slot{}, booking.ErrSlotUnknown
	}
	if err != nil {
		return booking.Slot{}, fmt.Errorf("lock slot: %w", err)
	}
	return slot, nil
}

func (t *tx) SetAvailable(ctx context.Context, day booking.Day, start booking.Clock, available bool) error {
	const q = `UPDATE time_slots SET available = $3 WHERE day_of_week = $1 AND start_time = $2`
	res, err := t.tx.ExecContext(ctx, q, day, start, available)
	if err != nil {
		return fmt.Errorf("set available: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return booking.ErrSlotUnknown
	}
	return nil
}

func (t *tx) InsertAppointment(ctx context.Context, clientID int64, day booking.Day, start booking.Clock) (int64, error) {
	const q = `
INSERT INTO appointments (client_id, day_of_week, start_time)
VALUES ($1, $2, $3)
RETURNING id`
	var id int64
	err := t.tx.GetContext(ctx, &id, q, clientID, day, start)
	if isUniqueViolation(err) {
		return 0, booking.ErrSlotTaken
	}
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	return id, nil
}

func (t *tx) LockAppointment(ctx context.Context, id int64) (booking.Appointment, error) {
	const q = `
SELECT id, client_id, day_of_week, start_time
FROM appointments
WHERE id = $1
FOR UPDATE`
	var a booking.Appointment
	err := t.tx.GetContext(ctx, &a, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Appointment{}, booking.ErrNotFound
	}
	if err != nil {
		return booking.Appointment{}, fmt.Errorf("lock appointment: %w", err)
	}
	return a, nil
}

func (t *tx) DeleteAppointment(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return booking.ErrNotFound
	}
	return nil
}
