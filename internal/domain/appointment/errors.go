package appointment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tags every way a booking attempt can be refused.
type ErrorKind string

const (
	KindInvalidInput         ErrorKind = "invalid_input"
	KindUnknownService       ErrorKind = "unknown_service"
	KindPastDate             ErrorKind = "past_date"
	KindInsufficientLeadTime ErrorKind = "insufficient_lead_time"
	KindTooFarInAdvance      ErrorKind = "too_far_in_advance"
	KindSameDayRestricted    ErrorKind = "same_day_restricted"
	KindOutsideBusinessHours ErrorKind = "outside_business_hours"
	KindBarberUnavailable    ErrorKind = "barber_unavailable"
	KindSlotConflict         ErrorKind = "slot_conflict"
)

// BookingError is the closed set of booking refusals. Only the fields that
// belong to Kind are populated.
type BookingError struct {
	Kind ErrorKind

	// InvalidInput
	Field string
	// InsufficientLeadTime
	RequiredMinutes int
	// TooFarInAdvance
	MaxDays int
	// OutsideBusinessHours: the open windows of that day, if any.
	Windows []Interval
	// SlotConflict: effective intervals of the clashing appointments.
	ConflictingTimes []Interval
}

func (e *BookingError) Error() string {
	switch e.Kind {
	case KindInvalidInput:
		if e.Field != "" {
			return "invalid input: " + e.Field
		}
		return "invalid input"
	case KindUnknownService:
		return "unknown service"
	case KindPastDate:
		return "requested time is in the past"
	case KindInsufficientLeadTime:
		return fmt.Sprintf("requires at least %d minutes notice", e.RequiredMinutes)
	case KindTooFarInAdvance:
		return fmt.Sprintf("cannot book more than %d days in advance", e.MaxDays)
	case KindSameDayRestricted:
		return "same-day booking is closed for this service"
	case KindOutsideBusinessHours:
		if len(e.Windows) == 0 {
			return "closed on the requested day"
		}
		parts := make([]string, 0, len(e.Windows))
		for _, w := range e.Windows {
			parts = append(parts, w.Start.Format("15:04")+"-"+w.End.Format("15:04"))
		}
		return "outside business hours (open " + strings.Join(parts, ", ") + ")"
	case KindBarberUnavailable:
		return "barber unavailable"
	case KindSlotConflict:
		if len(e.ConflictingTimes) == 0 {
			return "slot already taken"
		}
		parts := make([]string, 0, len(e.ConflictingTimes))
		for _, c := range e.ConflictingTimes {
			parts = append(parts, c.Start.Format("2006-01-02 15:04")+"-"+c.End.Format("15:04"))
		}
		return "slot conflicts with " + strings.Join(parts, ", ")
	}
	return string(e.Kind)
}

// Is matches on Kind so errors.Is(err, ErrSlotConflict) works for any
// SlotConflict regardless of detail.
func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidInput         = &BookingError{Kind: KindInvalidInput}
	ErrUnknownService       = &BookingError{Kind: KindUnknownService}
	ErrPastDate             = &BookingError{Kind: KindPastDate}
	ErrInsufficientLeadTime = &BookingError{Kind: KindInsufficientLeadTime}
	ErrTooFarInAdvance      = &BookingError{Kind: KindTooFarInAdvance}
	ErrSameDayRestricted    = &BookingError{Kind: KindSameDayRestricted}
	ErrOutsideBusinessHours = &BookingError{Kind: KindOutsideBusinessHours}
	ErrBarberUnavailable    = &BookingError{Kind: KindBarberUnavailable}
	ErrSlotConflict         = &BookingError{Kind: KindSlotConflict}
)

func InvalidInput(field string) error {
	return &BookingError{Kind: KindInvalidInput, Field: field}
}

func InsufficientLeadTime(requiredMinutes int) error {
	return &BookingError{Kind: KindInsufficientLeadTime, RequiredMinutes: requiredMinutes}
}

func TooFarInAdvance(maxDays int) error {
	return &BookingError{Kind: KindTooFarInAdvance, MaxDays: maxDays}
}

func OutsideBusinessHours(windows ...Interval) error {
	return &BookingError{Kind: KindOutsideBusinessHours, Windows: windows}
}

func SlotConflict(conflicts ...Interval) error {
	return &BookingError{Kind: KindSlotConflict, ConflictingTimes: conflicts}
}

// AsBookingError unwraps err into a *BookingError.
func AsBookingError(err error) (*BookingError, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// KindOf returns the booking error kind of err, or "" when err is not a
// booking refusal.
func KindOf(err error) ErrorKind {
	if be, ok := AsBookingError(err); ok {
		return be.Kind
	}
	return ""
}

// ===============================
// Collaborator errors
// ===============================

var (
	// ErrStorageUnavailable marks faults of the stores or the lock. It is
	// never a statement about the requested slot.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConstraintViolation is returned by AppointmentTx.Insert when the
	// store's own non-overlap constraint rejects the row.
	ErrConstraintViolation = errors.New("appointment constraint violation")

	ErrTenantNotFound      = errors.New("barbershop not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrBarberNotFound      = errors.New("barber not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

func StorageUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
