package appointment

import (
	"strings"
	"time"
)

// ClientRef identifies who the booking is for. A ref with neither ClientID
// nor Phone is a guest.
type ClientRef struct {
	ClientID *uint
	Name     string
	Phone    string
	Email    string
}

func (c ClientRef) IsGuest() bool {
	return c.ClientID == nil && strings.TrimSpace(c.Phone) == ""
}

// BookingRequest is one booking attempt as received from the API layer.
type BookingRequest struct {
	TenantID uint

	// Nil books with any qualified barber.
	BarberID *uint

	Date         string // YYYY-MM-DD
	Time         string // HH:MM, 24h
	ServiceName  string
	Client       ClientRef
	UserTimezone string
	Notes        string
}

const WarningLunchBreak = "overlaps_lunch_break"

// ValidatedBooking is a request that passed every constraint check.
type ValidatedBooking struct {
	Request BookingRequest
	Policy  BusinessPolicy
	Service ServiceInfo

	// Start in the business location.
	Start time.Time

	// Warnings raised by shop-wide rules.
	Warnings []string

	barberWarnings map[uint][]string
}

// WarningsFor returns the shop-wide warnings plus those raised while
// checking barberID.
func (v ValidatedBooking) WarningsFor(barberID uint) []string {
	out := append([]string(nil), v.Warnings...)
	for _, w := range v.barberWarnings[barberID] {
		out = appendWarning(out, w)
	}
	return out
}

func (v ValidatedBooking) SlotFor(barberID uint) Slot {
	return Slot{
		BarberID:     barberID,
		Start:        v.Start,
		Duration:     v.Service.Duration,
		BufferBefore: v.Service.BufferBefore,
		BufferAfter:  v.Service.BufferAfter,
	}
}

// serviceSpan is the interval that must fit inside open hours: the
// service plus its trailing buffer.
func (v ValidatedBooking) serviceSpan() Interval {
	return Interval{Start: v.Start, End: v.Start.Add(v.Service.Duration + v.Service.BufferAfter)}
}

func (v *ValidatedBooking) warn(w string) {
	v.Warnings = appendWarning(v.Warnings, w)
}

func (v *ValidatedBooking) warnBarber(barberID uint, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	if v.barberWarnings == nil {
		v.barberWarnings = map[uint][]string{}
	}
	v.barberWarnings[barberID] = warnings
}

func appendWarning(list []string, w string) []string {
	for _, existing := range list {
		if existing == w {
			return list
		}
	}
	return append(list, w)
}
