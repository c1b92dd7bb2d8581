package appointment

import "github.com/BruksfildServices01/bookedbarber/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// BlockingStatuses are the statuses that occupy a barber's calendar.
func BlockingStatuses() []Status {
	return []Status{StatusScheduled, StatusConfirmed}
}

// Blocks reports whether an appointment in this status holds its slot.
func (s Status) Blocks() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ===============================
// Transitions
// ===============================

func CanCancel(current Status) error {
	if !current.Blocks() {
		return invalidTransition(current, StatusCancelled)
	}
	return nil
}

func CanComplete(current Status) error {
	if !current.Blocks() {
		return invalidTransition(current, StatusCompleted)
	}
	return nil
}

func CanConfirm(current Status) error {
	if current != StatusScheduled {
		return invalidTransition(current, StatusConfirmed)
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if !current.Blocks() {
		return invalidTransition(current, StatusNoShow)
	}
	return nil
}

func invalidTransition(from, to Status) error {
	return httperr.ErrBusinessf("invalid_state", "cannot move a %s appointment to %s", from, to)
}

func InitialStatus() Status {
	return StatusScheduled
}
