package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/bookingbot/core/logger"
)

// ReserveResult is the expected outcome of Reserve.
type ReserveResult int

const (
	Booked ReserveResult = iota + 1
	SlotTaken
	SlotUnknown
)

func (r ReserveResult) String() string {
	switch r {
	case Booked:
		return "booked"
	case SlotTaken:
		return "slot_taken"
	case SlotUnknown:
		return "slot_unknown"
	}
	return "unknown"
}

// ReleaseResult is the expected outcome of Release and ReleaseFor.
type ReleaseResult int

const (
	Released ReleaseResult = iota + 1
	NotFound
	ReleaseForbidden
)

func (r ReleaseResult) String() string {
	switch r {
	case Released:
		return "released"
	case NotFound:
		return "not_found"
	case ReleaseForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Engine owns every write that couples slot availability with appointments.
type Engine struct {
	store Store
	cache AvailabilityCache
}

// NewEngine returns an Engine. cache may be nil.
func NewEngine(store Store, cache AvailabilityCache) *Engine {
	return &Engine{store: store, cache: cache}
}

// Reserve grants (day, start) to clientID. Among concurrent callers for the
// same slot exactly one gets Booked. The error is non-nil only for storage
// failures, in which case nothing was written.
func (e *Engine) Reserve(ctx context.Context, clientID int64, day Day, start Clock) (ReserveResult, error) {
	began := time.Now()
	var apptID int64
	err := e.store.InTx(ctx, func(tx Tx) error {
		slot, err := tx.LockSlot(ctx, day, start)
		if err != nil {
			return err
		}
		if !slot.Available {
			return ErrSlotTaken
		}
		if err := tx.SetAvailable(ctx, day, start, false); err != nil {
			return err
		}
		apptID, err = tx.InsertAppointment(ctx, clientID, day, start)
		return err
	})

	attrs := []slog.Attr{
		slog.Int64("client_id", clientID),
		slog.String("day", day.String()),
		slog.String("start", start.String()),
		slog.Duration("duration", logger.Took(began)),
	}
	switch {
	case err == nil:
		e.invalidate(ctx, day)
		logger.Info(ctx, logger.CompReservations, "reservation.booked",
			append(attrs, slog.String("outcome", "booked"), slog.Int64("appointment_id", apptID))...)
		return Booked, nil
	case errors.Is(err, ErrSlotTaken):
		logger.Debug(ctx, logger.CompReservations, "reservation.conflict",
			append(attrs, slog.String("outcome", "slot_taken"))...)
		return SlotTaken, nil
	case errors.Is(err, ErrSlotUnknown):
		logger.Debug(ctx, logger.CompReservations, "reservation.unknown",
			append(attrs, slog.String("outcome", "slot_unknown"))...)
		return SlotUnknown, nil
	}
	err = Wrap("reserve", err)
	logger.Error(ctx, logger.CompReservations, "reservation.fail",
		append(attrs, slog.String("status", "fail"), slog.String("err", err.Error()))...)
	return 0, err
}

// Release deletes the appointment and frees its slot.
func (e *Engine) Release(ctx context.Context, appointmentID int64) (ReleaseResult, error) {
	return e.release(ctx, appointmentID, 0)
}

// ReleaseFor is Release restricted to appointments owned by clientID. The
// ownership check runs under the appointment lock.
func (e *Engine) ReleaseFor(ctx context.Context, appointmentID, clientID int64) (ReleaseResult, error) {
	if clientID == 0 {
		return 0, errors.New("release: empty client id")
	}
	return e.release(ctx, appointmentID, clientID)
}

func (e *Engine) release(ctx context.Context, appointmentID, owner int64) (ReleaseResult, error) {
	began := time.Now()
	var appt Appointment
	err := e.store.InTx(ctx, func(tx Tx) error {
		var err error
		appt, err = tx.LockAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}
		if owner != 0 && appt.ClientID != owner {
			return ErrOwnership
		}
		if err := tx.DeleteAppointment(ctx, appointmentID); err != nil {
			return err
		}
		if _, err := tx.LockSlot(ctx, appt.Day, appt.Start); err != nil {
			if errors.Is(err, ErrSlotUnknown) {
				return &StorageError{Op: "release", Err: ErrInconsistent}
			}
			return err
		}
		return tx.SetAvailable(ctx, appt.Day, appt.Start, true)
	})

	attrs := []slog.Attr{
		slog.Int64("appointment_id", appointmentID),
		slog.Duration("duration", logger.Took(began)),
	}
	if owner != 0 {
		attrs = append(attrs, slog.Int64("client_id", owner))
	}
	switch {
	case err == nil:
		e.invalidate(ctx, appt.Day)
		logger.Info(ctx, logger.CompReservations, "reservation.released",
			append(attrs,
				slog.String("outcome", "released"),
				slog.String("day", appt.Day.String()),
				slog.String("start", appt.Start.String()),
			)...)
		return Released, nil
	case errors.Is(err, ErrNotFound):
		logger.Debug(ctx, logger.CompReservations, "reservation.release",
			append(attrs, slog.String("outcome", "not_found"))...)
		return NotFound, nil
	case errors.Is(err, ErrOwnership):
		logger.Warn(ctx, logger.CompReservations, "reservation.release",
			append(attrs, slog.String("outcome", "forbidden"))...)
		return ReleaseForbidden, nil
	}
	err = Wrap("release", err)
	logger.Error(ctx, logger.CompReservations, "reservation.fail",
		append(attrs, slog.String("status", "fail"), slog.String("err", err.Error()))...)
	return 0, err
}

func (e *Engine) invalidate(ctx context.Context, day Day) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, day); err != nil {
		logger.Warn(ctx, logger.CompReservations, "cache.invalidate",
			slog.String("status", "fail"),
			slog.String("day", day.String()),
			slog.String("err", err.Error()),
		)
	}
}
