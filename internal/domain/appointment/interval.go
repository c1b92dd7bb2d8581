package appointment

import (
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether i and o share any instant. Touching intervals
// (one ends exactly where the other starts) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Contains reports whether o lies entirely inside i.
func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// In returns the same interval expressed in loc.
func (i Interval) In(loc *time.Location) Interval {
	if loc == nil {
		return i
	}
	return Interval{Start: i.Start.In(loc), End: i.End.In(loc)}
}

func (i Interval) Empty() bool {
	return !i.End.After(i.Start)
}

// EffectiveInterval widens a service window by its buffers.
func EffectiveInterval(start time.Time, duration, bufferBefore, bufferAfter time.Duration) Interval {
	return Interval{
		Start: start.Add(-bufferBefore),
		End:   start.Add(duration + bufferAfter),
	}
}

// AppointmentEffective computes the effective interval of a stored
// appointment from its start, duration and buffers.
func AppointmentEffective(ap *models.Appointment) Interval {
	duration := time.Duration(ap.ServiceDurationMin) * time.Minute
	if duration <= 0 {
		duration = ap.EndTime.Sub(ap.StartTime)
	}
	return EffectiveInterval(
		ap.StartTime,
		duration,
		time.Duration(ap.BufferBeforeMin)*time.Minute,
		time.Duration(ap.BufferAfterMin)*time.Minute,
	)
}
