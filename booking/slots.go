package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/bookingbot/core/logger"
)

// Slots answers read-only questions about the slot catalog.
type Slots struct {
	store    Store
	schedule ScheduleConfig
	cache    AvailabilityCache
}

// NewSlots returns a Slots service. cache may be nil.
func NewSlots(store Store, schedule ScheduleConfig, cache AvailabilityCache) *Slots {
	return &Slots{store: store, schedule: schedule, cache: cache}
}

// Schedule returns the configured weekly grid.
func (s *Slots) Schedule() ScheduleConfig {
	return s.schedule
}

// ListAvailable returns the free start times of day in ascending order.
// An empty result is not an error.
func (s *Slots) ListAvailable(ctx context.Context, day Day) ([]Clock, error) {
	if !s.schedule.Has(day) {
		return nil, fmt.Errorf("%w: %s is not on the schedule", ErrInvalidDay, day)
	}
	var (
		gen  uint64
		fill bool
	)
	if s.cache != nil {
		starts, seen, ok, err := s.cache.Get(ctx, day)
		if err != nil {
			logger.Warn(ctx, logger.CompSlots, "cache.get",
				slog.String("status", "fail"),
				slog.String("day", day.String()),
				slog.String("err", err.Error()),
			)
		} else if ok {
			return starts, nil
		} else {
			gen, fill = seen, true
		}
	}

	starts, err := s.store.AvailableStarts(ctx, day)
	if err != nil {
		return nil, Wrap("list available", err)
	}
	if fill {
		if err := s.cache.Set(ctx, day, gen, starts); err != nil {
			logger.Warn(ctx, logger.CompSlots, "cache.set",
				slog.String("status", "fail"),
				slog.String("day", day.String()),
				slog.String("err", err.Error()),
			)
		}
	}
	return starts, nil
}

// Exists reports whether (day, start) is a slot of the catalog, booked or not.
func (s *Slots) Exists(ctx context.Context, day Day, start Clock) (bool, error) {
	if !day.Valid() {
		return false, nil
	}
	if !start.Valid() {
		return false, fmt.Errorf("%w: %d minutes", ErrInvalidTime, int(start))
	}
	ok, err := s.store.SlotExists(ctx, day, start)
	if err != nil {
		return false, Wrap("slot exists", err)
	}
	return ok, nil
}

// All lists every slot with its status, ordered by day then time.
func (s *Slots) All(ctx context.Context) ([]Slot, error) {
	slots, err := s.store.Slots(ctx)
	if err != nil {
		return nil, Wrap("list slots", err)
	}
	SortSlots(slots)
	return slots, nil
}

// Seed inserts the scheduled slots that are missing from the store.
func (s *Slots) Seed(ctx context.Context) (int, error) {
	n, err := s.store.EnsureSlots(ctx, s.schedule.Slots())
	if err != nil {
		return 0, Wrap("seed slots", err)
	}
	return n, nil
}
