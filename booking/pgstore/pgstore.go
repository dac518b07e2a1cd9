// Package pgstore is the PostgreSQL booking.Store. Reservation
// transactions lock the slot row with SELECT ... FOR UPDATE, and the unique
// index on appointments(day_of_week, start_time) backs the lock up.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/bookingbot/booking"
	"github.com/m3rciful/bookingbot/core/bootstrap"
)

const uniqueViolation = "23505"

// Store implements booking.Store over sqlx.
type Store struct {
	db *sqlx.DB
}

var _ booking.Store = (*Store)(nil)

// New wraps db.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping checks connectivity, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) UpsertClient(ctx context.Context, in booking.ClientInput) (int64, error) {
	const q = `
INSERT INTO clients (external_id, display_name, handle)
VALUES ($1, $2, $3)
ON CONFLICT (external_id) DO UPDATE
SET display_name = EXCLUDED.display_name, handle = EXCLUDED.handle
RETURNING id`
	var id int64
	if err := s.db.GetContext(ctx, &id, q, in.ExternalID, in.DisplayName, in.Handle); err != nil {
		return 0, fmt.Errorf("upsert client: %w", err)
	}
	return id, nil
}

func (s *Store) AvailableStarts(ctx context.Context, day booking.Day) ([]booking.Clock, error) {
	const q = `SELECT start_time FROM time_slots WHERE day_of_week = $1 AND available ORDER BY start_time`
	starts := []booking.Clock{}
	if err := s.db.SelectContext(ctx, &starts, q, day); err != nil {
		return nil, fmt.Errorf("available starts: %w", err)
	}
	return starts, nil
}

func (s *Store) SlotExists(ctx context.Context, day booking.Day, start booking.Clock) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM time_slots WHERE day_of_week = $1 AND start_time = $2)`
	var ok bool
	if err := s.db.GetContext(ctx, &ok, q, day, start); err != nil {
		return false, fmt.Errorf("slot exists: %w", err)
	}
	return ok, nil
}

func (s *Store) Slots(ctx context.Context) ([]booking.Slot, error) {
	const q = `
SELECT day_of_week, start_time, end_time, available
FROM time_slots
ORDER BY day_of_week, start_time`
	slots := []booking.Slot{}
	if err := s.db.SelectContext(ctx, &slots, q); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func (s *Store) EnsureSlots(ctx context.Context, slots []booking.Slot) (int, error) {
	const q = `
INSERT INTO time_slots (day_of_week, start_time, end_time, available)
VALUES (:day_of_week, :start_time, :end_time, :available)
ON CONFLICT (day_of_week, start_time) DO NOTHING`
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ensure slots: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("ensure slots: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, slot := range slots {
		res, err := stmt.ExecContext(ctx, slot)
		if err != nil {
			return 0, fmt.Errorf("ensure slots: %s %s: %w", slot.Day, slot.Start, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ensure slots: commit: %w", err)
	}
	return inserted, nil
}

func (s *Store) ClientEntries(ctx context.Context, clientID int64) ([]booking.Entry, error) {
	const q = `
SELECT a.id, a.day_of_week, a.start_time, t.end_time
FROM appointments a
JOIN time_slots t ON t.day_of_week = a.day_of_week AND t.start_time = a.start_time
WHERE a.client_id = $1
ORDER BY a.day_of_week, a.start_time`
	entries := []booking.Entry{}
	if err := s.db.SelectContext(ctx, &entries, q, clientID); err != nil {
		return nil, fmt.Errorf("client entries: %w", err)
	}
	return entries, nil
}

func (s *Store) OwnedAppointment(ctx context.Context, id, clientID int64) (booking.Appointment, error) {
	const q = `
SELECT id, client_id, day_of_week, start_time
FROM appointments
WHERE id = $1 AND client_id = $2`
	var a booking.Appointment
	err := s.db.GetContext(ctx, &a, q, id, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Appointment{}, booking.ErrNotFound
	}
	if err != nil {
		return booking.Appointment{}, fmt.Errorf("owned appointment: %w", err)
	}
	return a, nil
}

// InTx runs fn inside a READ COMMITTED transaction; row locks taken by
// the Tx methods give the per-slot serialization.
func (s *Store) InTx(ctx context.Context, fn func(booking.Tx) error) error {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&tx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SlotSeeder inserts the scheduled slots missing from the database at boot.
func SlotSeeder(schedule booking.ScheduleConfig) bootstrap.Seeder {
	return bootstrap.SeederFunc{
		Label: "time_slots",
		Fn: func(ctx context.Context, db *sqlx.DB) (int, error) {
			return New(db).EnsureSlots(ctx, schedule.Slots())
		},
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
