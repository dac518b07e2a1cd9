package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDay reports a day outside the recognized values or the schedule.
	ErrInvalidDay = errors.New("invalid day of week")
	// ErrInvalidTime reports a malformed time of day.
	ErrInvalidTime = errors.New("invalid time of day")
	// ErrValidation reports malformed input other than days and times.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports a missing appointment or client.
	ErrNotFound = errors.New("not found")
	// ErrSlotTaken reports a slot that is already booked.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrSlotUnknown reports a (day, start) pair with no slot row.
	ErrSlotUnknown = errors.New("slot does not exist")
	// ErrOwnership reports an appointment that belongs to someone else.
	ErrOwnership = errors.New("appointment belongs to another client")
	// ErrInconsistent reports storage that violates the booking invariants.
	ErrInconsistent = errors.New("storage inconsistency")
)

// StorageError wraps an infrastructure failure of operation Op.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Code names the error in handler logs.
func (e *StorageError) Code() string { return "STORAGE_ERROR" }

// Wrap returns err unchanged when it is nil, a domain sentinel or already a
// StorageError, and wraps it as a StorageError of op otherwise.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || KindOf(err) != KindStorage {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Kind groups errors by how callers must react to them.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindOwnership
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindOwnership:
		return "ownership"
	}
	return "storage"
}

// KindOf classifies err. Anything unrecognized counts as a storage failure.
func KindOf(err error) Kind {
	var se *StorageError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &se):
		return KindStorage
	case errors.Is(err, ErrInvalidDay), errors.Is(err, ErrInvalidTime), errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrSlotUnknown):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrOwnership):
		return KindOwnership
	}
	return KindStorage
}
