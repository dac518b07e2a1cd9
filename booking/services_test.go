package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m3rciful/bookingbot/booking"
	"github.com/m3rciful/bookingbot/booking/memstore"
)

type fixture struct {
	store    *memstore.Store
	registry *booking.Registry
	slots    *booking.Slots
	engine   *booking.Engine
	ledger   *booking.Ledger
}

func newFixture(t *testing.T, cache booking.AvailabilityCache) *fixture {
	t.Helper()
	store := memstore.New()
	slots := booking.NewSlots(store, booking.DefaultSchedule(), cache)
	if _, err := slots.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &fixture{
		store:    store,
		registry: booking.NewRegistry(store),
		slots:    slots,
		engine:   booking.NewEngine(store, cache),
		ledger:   booking.NewLedger(store),
	}
}

func (f *fixture) client(t *testing.T, ext int64) int64 {
	t.Helper()
	id, err := f.registry.Register(context.Background(), booking.ClientInput{ExternalID: ext, DisplayName: "user"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return id
}

func TestRegisterIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a, err := f.registry.Register(ctx, booking.ClientInput{ExternalID: 100, DisplayName: " Ann ", Handle: "@ann"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	b, err := f.registry.Register(ctx, booking.ClientInput{ExternalID: 100, DisplayName: "Ann B"})
	if err != nil || a != b {
		t.Fatalf("second register = %d, %v; want %d", b, err, a)
	}
	c, _ := f.store.Client(a)
	if c.DisplayName != "Ann B" {
		t.Fatalf("display name not refreshed: %q", c.DisplayName)
	}
	if _, err := f.registry.Register(ctx, booking.ClientInput{}); !errors.Is(err, booking.ErrValidation) {
		t.Fatalf("empty external id err = %v", err)
	}
}

func TestListAvailableReturnsFullDayInOrder(t *testing.T) {
	f := newFixture(t, nil)
	want := f.slots.Schedule().Starts()
	for _, day := range f.slots.Schedule().Days {
		got, err := f.slots.ListAvailable(context.Background(), day)
		if err != nil {
			t.Fatalf("%s: %v", day, err)
		}
		if len(got) != len(want) {
			t.Fatalf("%s: %d starts, want %d", day, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: starts %v, want %v", day, got, want)
			}
		}
	}
	if _, err := f.slots.ListAvailable(context.Background(), booking.Sunday); !errors.Is(err, booking.ErrInvalidDay) {
		t.Fatalf("unscheduled day err = %v", err)
	}
}

func TestExistsRejectsClockOutsideDay(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for _, at := range []booking.Clock{-1, 24 * 60} {
		ok, err := f.slots.Exists(ctx, booking.Monday, at)
		if ok || !errors.Is(err, booking.ErrInvalidTime) {
			t.Fatalf("Exists(%d) = %v, %v", at, ok, err)
		}
		if booking.KindOf(err) != booking.KindValidation {
			t.Fatalf("Exists(%d) kind = %v", at, booking.KindOf(err))
		}
	}
	if ok, err := f.slots.Exists(ctx, booking.Monday, booking.MustClock("10:00")); !ok || err != nil {
		t.Fatalf("Exists(10:00) = %v, %v", ok, err)
	}
}

func TestReserveUpdatesListingAndLedger(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, 1)
	ten := booking.MustClock("10:00")

	res, err := f.engine.Reserve(ctx, c, booking.Monday, ten)
	if err != nil || res != booking.Booked {
		t.Fatalf("Reserve = %v, %v", res, err)
	}

	starts, _ := f.slots.ListAvailable(ctx, booking.Monday)
	for _, s := range starts {
		if s == ten {
			t.Fatalf("10:00 still listed as available")
		}
	}
	entries, err := f.ledger.ListForClient(ctx, c)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ledger = %v, %v", entries, err)
	}
	if got := entries[0].Range(); got != "Monday 10:00-11:00" {
		t.Fatalf("entry = %q", got)
	}

	again, err := f.engine.Reserve(ctx, f.client(t, 2), booking.Monday, ten)
	if err != nil || again != booking.SlotTaken {
		t.Fatalf("second Reserve = %v, %v", again, err)
	}
	unknown, err := f.engine.Reserve(ctx, c, booking.Monday, booking.MustClock("07:00"))
	if err != nil || unknown != booking.SlotUnknown {
		t.Fatalf("unknown slot Reserve = %v, %v", unknown, err)
	}
}

func TestReserveExactlyOnceUnderConcurrency(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	const n = 32
	clients := make([]int64, n)
	for i := range clients {
		clients[i] = f.client(t, int64(1000+i))
	}

	results := make([]booking.ReserveResult, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			res, err := f.engine.Reserve(ctx, clients[i], booking.Wednesday, booking.MustClock("12:00"))
			if err != nil {
				t.Errorf("reserve %d: %v", i, err)
			}
			results[i] = res
		}(i)
	}
	close(start)
	wg.Wait()

	booked, taken := 0, 0
	for _, r := range results {
		switch r {
		case booking.Booked:
			booked++
		case booking.SlotTaken:
			taken++
		}
	}
	if booked != 1 || taken != n-1 {
		t.Fatalf("booked=%d taken=%d", booked, taken)
	}
	if got := len(f.store.Appointments()); got != 1 {
		t.Fatalf("appointments = %d, want 1", got)
	}
}

func TestReleaseRestoresSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, 1)
	two := booking.MustClock("14:00")
	if res, err := f.engine.Reserve(ctx, c, booking.Tuesday, two); err != nil || res != booking.Booked {
		t.Fatalf("Reserve = %v, %v", res, err)
	}
	entries, _ := f.ledger.ListForClient(ctx, c)

	res, err := f.engine.Release(ctx, entries[0].AppointmentID)
	if err != nil || res != booking.Released {
		t.Fatalf("Release = %v, %v", res, err)
	}
	if entries, _ := f.ledger.ListForClient(ctx, c); len(entries) != 0 {
		t.Fatalf("ledger still has %v", entries)
	}
	ok, _ := f.slots.Exists(ctx, booking.Tuesday, two)
	starts, _ := f.slots.ListAvailable(ctx, booking.Tuesday)
	if !ok || len(starts) != 9 {
		t.Fatalf("slot not restored: exists=%v starts=%v", ok, starts)
	}

	res, err = f.engine.Release(ctx, 999)
	if err != nil || res != booking.NotFound {
		t.Fatalf("unknown Release = %v, %v", res, err)
	}
}

func TestReleaseForRespectsOwnership(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a, b := f.client(t, 1), f.client(t, 2)
	if _, err := f.engine.Reserve(ctx, b, booking.Friday, booking.MustClock("09:00")); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	id := f.store.Appointments()[0].ID

	if _, err := f.ledger.FindOwned(ctx, id, a); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("FindOwned by stranger err = %v", err)
	}
	res, err := f.engine.ReleaseFor(ctx, id, a)
	if err != nil || res != booking.ReleaseForbidden {
		t.Fatalf("ReleaseFor stranger = %v, %v", res, err)
	}
	if entries, _ := f.ledger.ListForClient(ctx, b); len(entries) != 1 {
		t.Fatalf("owner lost the appointment")
	}
	if res, err := f.engine.ReleaseFor(ctx, id, b); err != nil || res != booking.Released {
		t.Fatalf("ReleaseFor owner = %v, %v", res, err)
	}
}

func TestReleaseMissingSlotIsStorageError(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, 1)
	nine := booking.MustClock("09:00")
	if _, err := f.engine.Reserve(ctx, c, booking.Monday, nine); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	f.store.DropSlot(booking.Monday, nine)

	_, err := f.engine.Release(ctx, f.store.Appointments()[0].ID)
	if booking.KindOf(err) != booking.KindStorage || !errors.Is(err, booking.ErrInconsistent) {
		t.Fatalf("err = %v", err)
	}
	if got := len(f.store.Appointments()); got != 1 {
		t.Fatalf("appointment deleted despite rollback")
	}
}

func TestReserveStorageFailureLeavesNoPartialState(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, 1)
	f.store.Fail("insert_appointment", errors.New("disk full"))

	_, err := f.engine.Reserve(ctx, c, booking.Thursday, booking.MustClock("16:00"))
	var se *booking.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StorageError", err)
	}
	starts, _ := f.slots.ListAvailable(ctx, booking.Thursday)
	if len(starts) != 9 {
		t.Fatalf("slot left unavailable: %v", starts)
	}
}

func TestLedgerOrdersByDayThenTime(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, 1)
	picks := []struct {
		day   booking.Day
		start string
	}{
		{booking.Saturday, "09:00"},
		{booking.Monday, "15:00"},
		{booking.Monday, "10:00"},
	}
	for _, p := range picks {
		if _, err := f.engine.Reserve(ctx, c, p.day, booking.MustClock(p.start)); err != nil {
			t.Fatalf("Reserve: %v", err)
		}
	}
	entries, _ := f.ledger.ListForClient(ctx, c)
	got := []string{entries[0].Range(), entries[1].Range(), entries[2].Range()}
	want := []string{"Monday 10:00-11:00", "Monday 15:00-16:00", "Saturday 09:00-10:00"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

type cachedDay struct {
	gen    uint64
	starts []booking.Clock
}

type mapCache struct {
	mu          sync.Mutex
	days        map[booking.Day]cachedDay
	gens        map[booking.Day]uint64
	hits        int
	invalidated []booking.Day
}

func newMapCache() *mapCache {
	return &mapCache{days: map[booking.Day]cachedDay{}, gens: map[booking.Day]uint64{}}
}

func (m *mapCache) Get(_ context.Context, day booking.Day) ([]booking.Clock, uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen := m.gens[day]
	v, ok := m.days[day]
	if !ok || v.gen != gen {
		return nil, gen, false, nil
	}
	m.hits++
	return v.starts, gen, true, nil
}

func (m *mapCache) Set(_ context.Context, day booking.Day, gen uint64, starts []booking.Clock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[day] = cachedDay{gen: gen, starts: starts}
	return nil
}

func (m *mapCache) Invalidate(_ context.Context, day booking.Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[day]++
	delete(m.days, day)
	m.invalidated = append(m.invalidated, day)
	return nil
}

// hookStore runs onList once, after AvailableStarts has read its rows.
type hookStore struct {
	*memstore.Store
	onList func()
}

func (h *hookStore) AvailableStarts(ctx context.Context, day booking.Day) ([]booking.Clock, error) {
	starts, err := h.Store.AvailableStarts(ctx, day)
	if fn := h.onList; fn != nil {
		h.onList = nil
		fn()
	}
	return starts, err
}

func TestCacheIgnoresListReadBeforeReserve(t *testing.T) {
	cache := newMapCache()
	mem := memstore.New()
	store := &hookStore{Store: mem}
	slots := booking.NewSlots(store, booking.DefaultSchedule(), cache)
	engine := booking.NewEngine(store, cache)
	registry := booking.NewRegistry(store)
	ctx := context.Background()
	if _, err := slots.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	client, err := registry.Register(ctx, booking.ClientInput{ExternalID: 1, DisplayName: "user"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	taken := booking.MustClock("10:00")
	store.onList = func() {
		if got, err := engine.Reserve(ctx, client, booking.Monday, taken); err != nil || got != booking.Booked {
			t.Errorf("Reserve = %v, %v", got, err)
		}
	}

	stale, err := slots.ListAvailable(ctx, booking.Monday)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if !containsClock(stale, taken) {
		t.Fatalf("first listing should predate the booking: %v", stale)
	}

	fresh, err := slots.ListAvailable(ctx, booking.Monday)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if containsClock(fresh, taken) {
		t.Fatalf("booked slot still offered from cache: %v", fresh)
	}
}

func containsClock(list []booking.Clock, c booking.Clock) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

func TestAvailabilityCacheInvalidatedOnReserve(t *testing.T) {
	cache := newMapCache()
	f := newFixture(t, cache)
	ctx := context.Background()

	first, _ := f.slots.ListAvailable(ctx, booking.Monday)
	_, _ = f.slots.ListAvailable(ctx, booking.Monday)
	if cache.hits != 1 {
		t.Fatalf("hits = %d, want 1", cache.hits)
	}
	if _, err := f.engine.Reserve(ctx, f.client(t, 1), booking.Monday, first[0]); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != booking.Monday {
		t.Fatalf("invalidated = %v", cache.invalidated)
	}
	after, _ := f.slots.ListAvailable(ctx, booking.Monday)
	if len(after) != len(first)-1 {
		t.Fatalf("stale listing after reserve: %v", after)
	}
}
