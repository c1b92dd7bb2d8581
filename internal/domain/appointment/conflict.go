package appointment

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

// Slot is a candidate booking for one barber.
type Slot struct {
	BarberID     uint
	Start        time.Time
	Duration     time.Duration
	BufferBefore time.Duration
	BufferAfter  time.Duration
}

func (s Slot) End() time.Time {
	return s.Start.Add(s.Duration)
}

// Effective is the span the slot blocks, buffers included.
func (s Slot) Effective() Interval {
	return EffectiveInterval(s.Start, s.Duration, s.BufferBefore, s.BufferAfter)
}

// LookupRange is the start-time range to fetch existing appointments with.
// It reaches into the neighbouring days so appointments whose buffers spill
// across midnight are still compared.
func LookupRange(s Slot) Interval {
	day := timezone.StartOfDay(s.Start)
	return Interval{
		Start: day.AddDate(0, 0, -1),
		End:   day.AddDate(0, 0, 2),
	}
}

// Conflicts returns the effective intervals of the existing appointments
// that overlap the candidate, ordered by start and expressed in the
// candidate's location. Appointments of other barbers or in non-blocking
// statuses never conflict.
func Conflicts(candidate Slot, existing []models.Appointment) []Interval {
	want := candidate.Effective()
	loc := candidate.Start.Location()

	var out []Interval
	for i := range existing {
		ap := &existing[i]
		if ap.BarberID != candidate.BarberID {
			continue
		}
		if !Status(ap.Status).Blocks() {
			continue
		}
		iv := AppointmentEffective(ap)
		if iv.Overlaps(want) {
			out = append(out, iv.In(loc))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// CheckSlot returns a SlotConflict error when the candidate overlaps any
// existing appointment, nil otherwise.
func CheckSlot(candidate Slot, existing []models.Appointment) error {
	if c := Conflicts(candidate, existing); len(c) > 0 {
		return SlotConflict(c...)
	}
	return nil
}

// NewAppointment builds the row for a granted slot.
func NewAppointment(v ValidatedBooking, barberID uint, clientID *uint) *models.Appointment {
	slot := v.SlotFor(barberID)
	eff := slot.Effective()
	return &models.Appointment{
		BarbershopID:       v.Request.TenantID,
		BarberID:           barberID,
		ClientID:           clientID,
		BarberProductID:    v.Service.ID,
		ServiceDurationMin: int(v.Service.Duration / time.Minute),
		BufferBeforeMin:    int(v.Service.BufferBefore / time.Minute),
		BufferAfterMin:     int(v.Service.BufferAfter / time.Minute),
		StartTime:          slot.Start,
		EndTime:            slot.End(),
		EffectiveStart:     eff.Start,
		EffectiveEnd:       eff.End,
		Status:             string(InitialStatus()),
		Notes:              v.Request.Notes,
	}
}
