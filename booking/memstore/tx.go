package memstore

import (
	"context"

	"github.com/m3rciful/bookingbot/booking"
)

// tx runs with s.mu held by InTx.
type tx struct {
	s    *Store
	undo []func()
}

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *tx) LockSlot(_ context.Context, day booking.Day, start booking.Clock) (booking.Slot, error) {
	if err := t.s.fault("lock_slot"); err != nil {
		return booking.Slot{}, err
	}
	slot, ok := t.s.slots[slotKey{day, start}]
	if !ok {
		return booking.Slot{}, booking.ErrSlotUnknown
	}
	return slot, nil
}

func (t *tx) SetAvailable(_ context.Context, day booking.Day, start booking.Clock, available bool) error {
	if err := t.s.fault("set_available"); err != nil {
		return err
	}
	k := slotKey{day, start}
	prev, ok := t.s.slots[k]
	if !ok {
		return booking.ErrSlotUnknown
	}
	next := prev
	next.Available = available
	t.s.slots[k] = next
	t.undo = append(t.undo, func() { t.s.slots[k] = prev })
	return nil
}

func (t *tx) InsertAppointment(_ context.Context, clientID int64, day booking.Day, start booking.Clock) (int64, error) {
	if err := t.s.fault("insert_appointment"); err != nil {
		return 0, err
	}
	k := slotKey{day, start}
	if _, taken := t.s.apptBySlot[k]; taken {
		return 0, booking.ErrSlotTaken
	}
	prevNext := t.s.nextAppt
	t.s.nextAppt++
	id := t.s.nextAppt
	t.s.appts[id] = booking.Appointment{ID: id, ClientID: clientID, Day: day, Start: start}
	t.s.apptBySlot[k] = id
	t.undo = append(t.undo, func() {
		delete(t.s.appts, id)
		delete(t.s.apptBySlot, k)
		t.s.nextAppt = prevNext
	})
	return id, nil
}

func (t *tx) LockAppointment(_ context.Context, id int64) (booking.Appointment, error) {
	if err := t.s.fault("lock_appointment"); err != nil {
		return booking.Appointment{}, err
	}
	a, ok := t.s.appts[id]
	if !ok {
		return booking.Appointment{}, booking.ErrNotFound
	}
	return a, nil
}

func (t *tx) DeleteAppointment(_ context.Context, id int64) error {
	if err := t.s.fault("delete_appointment"); err != nil {
		return err
	}
	a, ok := t.s.appts[id]
	if !ok {
		return booking.ErrNotFound
	}
	k := slotKey{a.Day, a.Start}
	delete(t.s.appts, id)
	delete(t.s.apptBySlot, k)
	t.undo = append(t.undo, func() {
		t.s.appts[id] = a
		t.s.apptBySlot[k] = id
	})
	return nil
}
