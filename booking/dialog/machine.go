package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/bookingbot/booking"
	"github.com/m3rciful/bookingbot/core/logger"
	"github.com/m3rciful/bookingbot/core/telegram/state"
)

// Services are the booking components the machine drives.
type Services struct {
	Registry *booking.Registry
	Slots    *booking.Slots
	Engine   *booking.Engine
	Ledger   *booking.Ledger
}

// Machine runs the booking and cancellation dialogs of all users.
// Events of one user are handled one at a time; different users never
// wait for each other.
type Machine struct {
	svc      Services
	cfg      Config
	sessions *state.Store[Session]
	now      func() time.Time
	newToken func() string
}

// New returns a Machine. cfg is normalized in place.
func New(svc Services, cfg Config) (*Machine, error) {
	if svc.Registry == nil || svc.Slots == nil || svc.Engine == nil || svc.Ledger == nil {
		return nil, errors.New("dialog: all services are required")
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &Machine{
		svc:      svc,
		cfg:      cfg,
		sessions: state.New[Session](cfg.TTL),
		now:      time.Now,
		newToken: uuid.NewString,
	}, nil
}

// SetClock replaces the time source of the machine and its sessions.
func (m *Machine) SetClock(now func() time.Time) {
	m.now = now
	m.sessions.SetClock(now)
}

// RunSweeper drops expired sessions until ctx is done.
func (m *Machine) RunSweeper(ctx context.Context) {
	m.sessions.RunSweeper(ctx, m.cfg.SweepInterval)
}

// InProgress reports whether userID has an open dialog.
func (m *Machine) InProgress(userID int64) bool {
	var open bool
	_ = m.sessions.With(userID, func(s *state.Slot[Session]) error {
		_, open = s.Get()
		return nil
	})
	return open
}

// Handle applies ev for user and returns what to show. The error is
// non-nil only for storage failures; the outcome is then a StorageError
// result and the session is gone.
func (m *Machine) Handle(ctx context.Context, user UserIdentified, ev Event) (Outcome, error) {
	if user.ExternalID == 0 {
		return nil, fmt.Errorf("dialog: %w: empty user id", booking.ErrValidation)
	}
	if ev == nil {
		return nil, fmt.Errorf("dialog: %w: nil event", booking.ErrValidation)
	}
	began := time.Now()
	var (
		out      Outcome
		from, to State
		hadFrom  bool
		hasTo    bool
	)
	err := m.sessions.With(user.ExternalID, func(slot *state.Slot[Session]) error {
		if s, ok := slot.Get(); ok {
			from, hadFrom = s.State, true
		}
		var err error
		out, err = m.dispatch(ctx, user, ev, slot)
		if s, ok := slot.Get(); ok {
			to, hasTo = s.State, true
		}
		return err
	})

	attrs := []slog.Attr{
		slog.String("dialog_event", eventName(ev)),
		slog.String("from", stateLabel(from, hadFrom)),
		slog.String("to", stateLabel(to, hasTo)),
		slog.String("result", OutcomeName(out)),
		slog.Duration("duration", logger.Took(began)),
	}
	switch {
	case err != nil:
		logger.Warn(ctx, logger.CompDialog, "dialog.fail", append(attrs, slog.String("err", err.Error()))...)
	case isResult(out):
		logger.Info(ctx, logger.CompDialog, "dialog.end", attrs...)
	default:
		logger.Debug(ctx, logger.CompDialog, "dialog.step", attrs...)
	}
	return out, err
}

func (m *Machine) dispatch(ctx context.Context, user UserIdentified, ev Event, slot *state.Slot[Session]) (Outcome, error) {
	switch e := ev.(type) {
	case UserIdentified:
		id, err := m.register(ctx, user)
		if err != nil {
			return m.fail(slot, err)
		}
		return Registered{ClientID: id}, nil
	case StartBooking:
		return m.startBooking(ctx, user, slot)
	case StartCancel:
		return m.startCancel(ctx, user, slot)
	case ShowAppointments:
		return m.showAppointments(ctx, user, slot)
	case Abort:
		sess, ok := slot.Get()
		if !ok {
			return Reprompt{Reason: ReasonNoSession}, nil
		}
		if e.Token != "" && e.Token != sess.Token {
			return m.reprompt(sess, ReasonStaleToken), nil
		}
		slot.Clear()
		return Result{Kind: Cancelled}, nil
	case Text:
		sess, ok := slot.Get()
		if !ok {
			return Reprompt{Reason: ReasonNoSession}, nil
		}
		return Reprompt{Reason: ReasonText, Prompt: sess.prompt(m.duration())}, nil
	case DaySelected, TimeSelected, Confirmed, CancelTargetSelected:
		return m.step(ctx, e, slot)
	}
	return nil, fmt.Errorf("dialog: %w: unsupported event %T", booking.ErrValidation, ev)
}

// step handles the events that answer a prompt of an open session.
func (m *Machine) step(ctx context.Context, ev Event, slot *state.Slot[Session]) (Outcome, error) {
	sess, ok := slot.Get()
	if !ok {
		return Reprompt{Reason: ReasonNoSession}, nil
	}
	if tokenOf(ev) != sess.Token {
		return m.reprompt(sess, ReasonStaleToken), nil
	}
	switch e := ev.(type) {
	case DaySelected:
		if sess.State == StateSelectDay {
			return m.selectDay(ctx, sess, e.Day, slot)
		}
	case TimeSelected:
		if sess.State == StateSelectTime {
			return m.selectTime(ctx, sess, e.Time, slot)
		}
	case Confirmed:
		if sess.State == StateConfirm {
			return m.confirm(ctx, sess, e.Yes, slot)
		}
	case CancelTargetSelected:
		if sess.State == StateCancelSelect {
			return m.release(ctx, sess, e.Index, slot)
		}
	}
	return m.reprompt(sess, ReasonUnexpected), nil
}

func (m *Machine) startBooking(ctx context.Context, user UserIdentified, slot *state.Slot[Session]) (Outcome, error) {
	slot.Clear()
	id, err := m.register(ctx, user)
	if err != nil {
		return m.fail(slot, err)
	}
	sess := Session{
		Token:       m.newToken(),
		State:       StateSelectDay,
		ClientID:    id,
		OfferedDays: slices.Clone(m.svc.Slots.Schedule().Days),
	}
	m.put(slot, sess)
	return sess.prompt(m.duration()), nil
}

func (m *Machine) selectDay(ctx context.Context, sess Session, day booking.Day, slot *state.Slot[Session]) (Outcome, error) {
	if !slices.Contains(sess.OfferedDays, day) {
		return m.reprompt(sess, ReasonInvalidDay), nil
	}
	times, err := m.svc.Slots.ListAvailable(ctx, day)
	if errors.Is(err, booking.ErrInvalidDay) {
		return m.reprompt(sess, ReasonInvalidDay), nil
	}
	if err != nil {
		return m.fail(slot, err)
	}
	if len(times) == 0 {
		slot.Clear()
		return Result{Kind: NoSlotsAvailable, Day: day}, nil
	}
	sess.State = StateSelectTime
	sess.SelectedDay = day
	sess.OfferedTimes = times
	m.put(slot, sess)
	return sess.prompt(m.duration()), nil
}

// selectTime accepts any start that exists on the selected day. A start
// missing from the offered list was taken meanwhile; Reserve settles it.
// Starts off the schedule grid are rejected before the store is asked.
func (m *Machine) selectTime(ctx context.Context, sess Session, start booking.Clock, slot *state.Slot[Session]) (Outcome, error) {
	if !slices.Contains(sess.OfferedTimes, start) && !slices.Contains(m.svc.Slots.Schedule().Starts(), start) {
		return m.reprompt(sess, ReasonInvalidTime), nil
	}
	exists, err := m.svc.Slots.Exists(ctx, sess.SelectedDay, start)
	if err != nil {
		return m.fail(slot, err)
	}
	if !exists {
		if !slices.Contains(sess.OfferedTimes, start) {
			return m.reprompt(sess, ReasonInvalidTime), nil
		}
		times, err := m.svc.Slots.ListAvailable(ctx, sess.SelectedDay)
		if err != nil {
			return m.fail(slot, err)
		}
		if len(times) == 0 {
			slot.Clear()
			return Result{Kind: NoSlotsAvailable, Day: sess.SelectedDay}, nil
		}
		sess.OfferedTimes = times
		m.put(slot, sess)
		return m.reprompt(sess, ReasonSlotGone), nil
	}
	sess.State = StateConfirm
	sess.SelectedStart = start
	m.put(slot, sess)
	return sess.prompt(m.duration()), nil
}

func (m *Machine) confirm(ctx context.Context, sess Session, yes bool, slot *state.Slot[Session]) (Outcome, error) {
	slot.Clear()
	res := Result{
		Day:   sess.SelectedDay,
		Start: sess.SelectedStart,
		End:   sess.SelectedStart.Add(m.duration()),
	}
	if !yes {
		res.Kind = Cancelled
		return res, nil
	}
	got, err := m.svc.Engine.Reserve(ctx, sess.ClientID, sess.SelectedDay, sess.SelectedStart)
	if err != nil {
		return m.fail(slot, err)
	}
	switch got {
	case booking.Booked:
		res.Kind = Booked
	default:
		// an unknown slot means it was removed after being offered; to the
		// user that is the same as losing it
		res.Kind = SlotTaken
	}
	return res, nil
}

func (m *Machine) startCancel(ctx context.Context, user UserIdentified, slot *state.Slot[Session]) (Outcome, error) {
	slot.Clear()
	id, err := m.register(ctx, user)
	if err != nil {
		return m.fail(slot, err)
	}
	entries, err := m.svc.Ledger.ListForClient(ctx, id)
	if err != nil {
		return m.fail(slot, err)
	}
	if len(entries) == 0 {
		return AppointmentList{Entries: entries}, nil
	}
	sess := Session{
		Token:               m.newToken(),
		State:               StateCancelSelect,
		ClientID:            id,
		OfferedAppointments: entries,
	}
	m.put(slot, sess)
	return sess.prompt(m.duration()), nil
}

func (m *Machine) release(ctx context.Context, sess Session, index int, slot *state.Slot[Session]) (Outcome, error) {
	if index < 0 || index >= len(sess.OfferedAppointments) {
		return m.reprompt(sess, ReasonInvalidIndex), nil
	}
	slot.Clear()
	entry := sess.OfferedAppointments[index]
	res := Result{Day: entry.Day, Start: entry.Start, End: entry.End}

	if _, err := m.svc.Ledger.FindOwned(ctx, entry.AppointmentID, sess.ClientID); err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			res.Kind = NotFound
			return res, nil
		}
		return m.fail(slot, err)
	}
	got, err := m.svc.Engine.ReleaseFor(ctx, entry.AppointmentID, sess.ClientID)
	if err != nil {
		return m.fail(slot, err)
	}
	switch got {
	case booking.Released:
		res.Kind = Released
	case booking.ReleaseForbidden:
		res.Kind = OwnershipError
	default:
		res.Kind = NotFound
	}
	return res, nil
}

func (m *Machine) showAppointments(ctx context.Context, user UserIdentified, slot *state.Slot[Session]) (Outcome, error) {
	id, err := m.register(ctx, user)
	if err != nil {
		return m.fail(slot, err)
	}
	entries, err := m.svc.Ledger.ListForClient(ctx, id)
	if err != nil {
		return m.fail(slot, err)
	}
	return AppointmentList{Entries: entries}, nil
}

func (m *Machine) register(ctx context.Context, user UserIdentified) (int64, error) {
	return m.svc.Registry.Register(ctx, booking.ClientInput{
		ExternalID:  user.ExternalID,
		DisplayName: user.DisplayName,
		Handle:      user.Handle,
	})
}

func (m *Machine) put(slot *state.Slot[Session], sess Session) {
	sess.UpdatedAt = m.now()
	slot.Put(sess)
}

func (m *Machine) reprompt(sess Session, reason Reason) Reprompt {
	return Reprompt{Reason: reason, Prompt: sess.prompt(m.duration())}
}

// fail ends the dialog on storage failures. Validation errors from the
// services re-prompt the open step instead; any other kind reaching here
// is reported as a storage failure too.
func (m *Machine) fail(slot *state.Slot[Session], err error) (Outcome, error) {
	switch booking.KindOf(err) {
	case booking.KindValidation:
		reason := ReasonUnexpected
		switch {
		case errors.Is(err, booking.ErrInvalidDay):
			reason = ReasonInvalidDay
		case errors.Is(err, booking.ErrInvalidTime):
			reason = ReasonInvalidTime
		}
		if sess, ok := slot.Get(); ok {
			return m.reprompt(sess, reason), nil
		}
		return Reprompt{Reason: reason}, nil
	case booking.KindStorage:
		err = booking.Wrap("dialog", err)
	default:
		err = &booking.StorageError{Op: "dialog", Err: err}
	}
	slot.Clear()
	return Result{Kind: StorageError}, err
}

func (m *Machine) duration() time.Duration {
	return m.svc.Slots.Schedule().Duration
}

func tokenOf(ev Event) string {
	switch e := ev.(type) {
	case DaySelected:
		return e.Token
	case TimeSelected:
		return e.Token
	case Confirmed:
		return e.Token
	case CancelTargetSelected:
		return e.Token
	}
	return ""
}

func stateLabel(s State, ok bool) string {
	if !ok {
		return "none"
	}
	return s.String()
}

func isResult(o Outcome) bool {
	_, ok := o.(Result)
	return ok
}
