// Package memstore is an in-process booking.Store. Transactions are
// serialized by one mutex and rolled back through an undo log, which gives
// the same guarantees as the row locks of the SQL store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m3rciful/bookingbot/booking"
)

type slotKey struct {
	day   booking.Day
	start booking.Clock
}

// Store implements booking.Store in memory.
type Store struct {
	mu sync.Mutex

	clients    map[int64]booking.Client
	byExternal map[int64]int64
	slots      map[slotKey]booking.Slot
	appts      map[int64]booking.Appointment
	apptBySlot map[slotKey]int64
	nextClient int64
	nextAppt   int64

	faults map[string]error
	now    func() time.Time
}

var _ booking.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		clients:    make(map[int64]booking.Client),
		byExternal: make(map[int64]int64),
		slots:      make(map[slotKey]booking.Slot),
		appts:      make(map[int64]booking.Appointment),
		apptBySlot: make(map[slotKey]int64),
		faults:     make(map[string]error),
		now:        time.Now,
	}
}

// Fail makes the next call of op return err. Ops are named after the
// store methods in snake case, plus "commit".
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	s.faults[op] = err
	s.mu.Unlock()
}

// DropSlot deletes a slot row behind the engine's back.
func (s *Store) DropSlot(day booking.Day, start booking.Clock) {
	s.mu.Lock()
	delete(s.slots, slotKey{day, start})
	s.mu.Unlock()
}

// Appointments returns a snapshot of every appointment ordered by id.
func (s *Store) Appointments() []booking.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]booking.Appointment, 0, len(s.appts))
	for _, a := range s.appts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// fault consumes an injected failure. Callers hold s.mu.
func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

func (s *Store) UpsertClient(_ context.Context, in booking.ClientInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("upsert_client"); err != nil {
		return 0, err
	}
	if id, ok := s.byExternal[in.ExternalID]; ok {
		c := s.clients[id]
		c.DisplayName, c.Handle = in.DisplayName, in.Handle
		s.clients[id] = c
		return id, nil
	}
	s.nextClient++
	id := s.nextClient
	s.clients[id] = booking.Client{
		ID:          id,
		ExternalID:  in.ExternalID,
		DisplayName: in.DisplayName,
		Handle:      in.Handle,
		CreatedAt:   s.now(),
	}
	s.byExternal[in.ExternalID] = id
	return id, nil
}

// Client returns the client with id, for tests.
func (s *Store) Client(id int64) (booking.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	return c, ok
}

func (s *Store) AvailableStarts(_ context.Context, day booking.Day) ([]booking.Clock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("available_starts"); err != nil {
		return nil, err
	}
	out := []booking.Clock{}
	for k, slot := range s.slots {
		if k.day == day && slot.Available {
			out = append(out, k.start)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Store) SlotExists(_ context.Context, day booking.Day, start booking.Clock) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("slot_exists"); err != nil {
		return false, err
	}
	_, ok := s.slots[slotKey{day, start}]
	return ok, nil
}

func (s *Store) Slots(_ context.Context) ([]booking.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("slots"); err != nil {
		return nil, err
	}
	out := make([]booking.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		out = append(out, slot)
	}
	booking.SortSlots(out)
	return out, nil
}

func (s *Store) EnsureSlots(_ context.Context, slots []booking.Slot) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("ensure_slots"); err != nil {
		return 0, err
	}
	n := 0
	for _, slot := range slots {
		k := slotKey{slot.Day, slot.Start}
		if _, ok := s.slots[k]; ok {
			continue
		}
		s.slots[k] = slot
		n++
	}
	return n, nil
}

func (s *Store) ClientEntries(_ context.Context, clientID int64) ([]booking.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("client_entries"); err != nil {
		return nil, err
	}
	out := []booking.Entry{}
	for _, a := range s.appts {
		if a.ClientID != clientID {
			continue
		}
		slot := s.slots[slotKey{a.Day, a.Start}]
		out = append(out, booking.Entry{AppointmentID: a.ID, Day: a.Day, Start: a.Start, End: slot.End})
	}
	booking.SortEntries(out)
	return out, nil
}

func (s *Store) OwnedAppointment(_ context.Context, id, clientID int64) (booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("owned_appointment"); err != nil {
		return booking.Appointment{}, err
	}
	a, ok := s.appts[id]
	if !ok || a.ClientID != clientID {
		return booking.Appointment{}, booking.ErrNotFound
	}
	return a, nil
}

// InTx runs fn with exclusive access to the store and undoes its writes
// when fn or the commit fails.
func (s *Store) InTx(ctx context.Context, fn func(booking.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &tx{s: s}
	err := fn(tx)
	if err == nil {
		err = s.fault("commit")
	}
	if err != nil {
		tx.rollback()
		return err
	}
	return nil
}
