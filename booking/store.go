package booking

import "context"

// Store is the persistence port of the booking services.
// Read methods never lock; all mutations of slots and appointments go
// through InTx, which only the Engine calls.
type Store interface {
	UpsertClient(ctx context.Context, in ClientInput) (int64, error)

	AvailableStarts(ctx context.Context, day Day) ([]Clock, error)
	SlotExists(ctx context.Context, day Day, start Clock) (bool, error)
	Slots(ctx context.Context) ([]Slot, error)
	// EnsureSlots inserts missing slots and leaves existing ones untouched.
	EnsureSlots(ctx context.Context, slots []Slot) (int, error)

	ClientEntries(ctx context.Context, clientID int64) ([]Entry, error)
	// OwnedAppointment returns ErrNotFound when the appointment is missing
	// or belongs to another client.
	OwnedAppointment(ctx context.Context, id, clientID int64) (Appointment, error)

	// InTx runs fn in one transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the write side of the store, valid only inside InTx.
type Tx interface {
	// LockSlot locks the slot row, returning ErrSlotUnknown if absent.
	LockSlot(ctx context.Context, day Day, start Clock) (Slot, error)
	SetAvailable(ctx context.Context, day Day, start Clock, available bool) error
	// InsertAppointment returns ErrSlotTaken if the slot already has one.
	InsertAppointment(ctx context.Context, clientID int64, day Day, start Clock) (int64, error)
	// LockAppointment locks the appointment row, returning ErrNotFound if absent.
	LockAppointment(ctx context.Context, id int64) (Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
}

// AvailabilityCache caches ListAvailable results per day. Failures are
// logged by the caller and never fail a read.
//
// Every day carries a generation that Invalidate advances. Get reports the
// generation it saw and Set stores a list under it, so a list read from the
// store before a concurrent Invalidate is never served afterwards.
type AvailabilityCache interface {
	Get(ctx context.Context, day Day) (starts []Clock, gen uint64, ok bool, err error)
	Set(ctx context.Context, day Day, gen uint64, starts []Clock) error
	Invalidate(ctx context.Context, day Day) error
}
