package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/bookingbot/core/logger"
)

// Slot is the handle passed to With. It is valid only inside the callback.
type Slot[T any] struct {
	e *entry[T]
}

// Get returns the stored value and whether one exists.
func (s *Slot[T]) Get() (T, bool) {
	return s.e.value, s.e.present
}

// Put stores v and refreshes its expiry.
func (s *Slot[T]) Put(v T) {
	s.e.value = v
	s.e.present = true
	s.e.dirty = true
}

// Clear drops the stored value.
func (s *Slot[T]) Clear() {
	var zero T
	s.e.value = zero
	s.e.present = false
}

type entry[T any] struct {
	mu      sync.Mutex
	value   T
	present bool
	dirty   bool
	touched time.Time
	refs    int
}

// Store maps user ids to values of T.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[int64]*entry[T]
	ttl     time.Duration
	now     func() time.Time
}

// New returns a store whose values expire ttl after their last Put.
// A non-positive ttl disables expiry.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		entries: make(map[int64]*entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the time source; used in tests.
func (s *Store[T]) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// With runs fn while holding the lock of key. Calls for the same key run one
// at a time in arrival order of the lock; calls for other keys do not block.
func (s *Store[T]) With(key int64, fn func(*Slot[T]) error) error {
	e := s.acquire(key)
	defer s.release(key, e)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.clock()
	if e.present && s.expired(e, now) {
		var zero T
		e.value, e.present = zero, false
	}
	e.dirty = false
	err := fn(&Slot[T]{e: e})
	if e.dirty {
		e.touched = now
	}
	return err
}

// Sweep removes expired values nobody is using and returns how many went.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for key, e := range s.entries {
		if e.refs == 0 && (!e.present || s.expired(e, now)) {
			delete(s.entries, key)
			if e.present {
				n++
			}
		}
	}
	return n
}

// Len reports the number of tracked keys.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store[T]) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug(ctx, "tg.state", "session.expired",
					slog.Int("count", n),
					slog.Int("live", s.Len()),
				)
			}
		}
	}
}

func (s *Store[T]) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

func (s *Store[T]) expired(e *entry[T], now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.touched) >= s.ttl
}

func (s *Store[T]) acquire(key int64) *entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry[T]{}
		s.entries[key] = e
	}
	e.refs++
	return e
}

func (s *Store[T]) release(key int64, e *entry[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.refs--
	if e.refs == 0 && !e.present {
		delete(s.entries, key)
	}
}
