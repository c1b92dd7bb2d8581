package appointment

import (
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

// AvailabilityWindow is one recurring open window of a barber. Clock
// fields are minutes since local midnight.
type AvailabilityWindow struct {
	BarberID uint
	Weekday  time.Weekday
	Start    int
	End      int

	HasLunch   bool
	LunchStart int
	LunchEnd   int
}

// On places the window on day's calendar date.
func (w AvailabilityWindow) On(day time.Time, loc *time.Location) Interval {
	return Interval{
		Start: timezone.At(day, w.Start, loc),
		End:   timezone.At(day, w.End, loc),
	}
}

func (w AvailabilityWindow) LunchOn(day time.Time, loc *time.Location) (Interval, bool) {
	if !w.HasLunch {
		return Interval{}, false
	}
	return Interval{
		Start: timezone.At(day, w.LunchStart, loc),
		End:   timezone.At(day, w.LunchEnd, loc),
	}, true
}

// WindowsFromWorkingHours converts stored rows, dropping inactive or
// malformed ones.
func WindowsFromWorkingHours(rows []models.WorkingHours) []AvailabilityWindow {
	out := make([]AvailabilityWindow, 0, len(rows))
	for _, wh := range rows {
		if !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
			continue
		}
		start, err := timezone.ParseClock(wh.StartTime)
		if err != nil {
			continue
		}
		end, err := timezone.ParseClock(wh.EndTime)
		if err != nil || end <= start {
			continue
		}

		w := AvailabilityWindow{
			BarberID: wh.BarberID,
			Weekday:  time.Weekday(wh.Weekday),
			Start:    start,
			End:      end,
		}
		if wh.LunchStart != "" && wh.LunchEnd != "" {
			ls, err1 := timezone.ParseClock(wh.LunchStart)
			le, err2 := timezone.ParseClock(wh.LunchEnd)
			if err1 == nil && err2 == nil && le > ls {
				w.HasLunch = true
				w.LunchStart = ls
				w.LunchEnd = le
			}
		}
		out = append(out, w)
	}
	return out
}

// WindowContaining returns the first window that fully contains iv on
// day's date.
func WindowContaining(windows []AvailabilityWindow, day time.Time, loc *time.Location, iv Interval) (AvailabilityWindow, bool) {
	for _, w := range windows {
		if w.On(day, loc).Contains(iv) {
			return w, true
		}
	}
	return AvailabilityWindow{}, false
}

func windowsOn(windows []AvailabilityWindow, day time.Time, loc *time.Location) []Interval {
	out := make([]Interval, 0, len(windows))
	for _, w := range windows {
		out = append(out, w.On(day, loc))
	}
	return out
}

// AvailabilityInput asks for the free start times of one day.
type AvailabilityInput struct {
	TenantID    uint
	BarberID    *uint
	ServiceName string
	Date        string
}

type TimeSlot struct {
	BarberID uint   `json:"barber_id"`
	Start    string `json:"start"`
	End      string `json:"end"`
}
