package booking

import (
	"context"
	"log/slog"

	"github.com/m3rciful/bookingbot/core/logger"
)

// Ledger answers questions about booked appointments.
type Ledger struct {
	store Store
}

// NewLedger returns a Ledger backed by store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// ListForClient returns the client's appointments ordered by day ranking,
// then start time.
func (l *Ledger) ListForClient(ctx context.Context, clientID int64) ([]Entry, error) {
	entries, err := l.store.ClientEntries(ctx, clientID)
	if err != nil {
		logger.Error(ctx, logger.CompLedger, "ledger.list",
			slog.Int64("client_id", clientID),
			slog.String("err", err.Error()),
		)
		return nil, Wrap("list appointments", err)
	}
	SortEntries(entries)
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, logger.CompLedger, "ledger.list",
			slog.Int64("client_id", clientID),
			slog.Int("count", len(entries)),
		)
	}
	return entries, nil
}

// FindOwned returns the appointment if clientID owns it. Appointments of
// other clients are reported as ErrNotFound so their existence stays hidden.
func (l *Ledger) FindOwned(ctx context.Context, appointmentID, clientID int64) (Appointment, error) {
	appt, err := l.store.OwnedAppointment(ctx, appointmentID, clientID)
	if err != nil {
		if KindOf(err) == KindStorage {
			logger.Error(ctx, logger.CompLedger, "ledger.find",
				slog.Int64("appointment_id", appointmentID),
				slog.String("err", err.Error()),
			)
		}
		return Appointment{}, Wrap("find appointment", err)
	}
	return appt, nil
}
