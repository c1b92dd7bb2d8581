package appointment

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

// GetAvailability lists the start times of one day that would pass
// validation and the conflict check right now. Lunch windows are skipped
// even though booking into them is only a warning.
type GetAvailability struct {
	repo     domain.Repository
	policies domain.PolicyConfig
	clock    timezone.Clock
}

func NewGetAvailability(
	repo domain.Repository,
	policies domain.PolicyConfig,
	clock timezone.Clock,
) *GetAvailability {
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	return &GetAvailability{repo: repo, policies: policies, clock: clock}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	policy, err := uc.policies.ForTenant(ctx, in.TenantID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return nil, domain.InvalidInput("barbershop")
		}
		return nil, domain.StorageUnavailable("load policy", err)
	}

	if strings.TrimSpace(in.ServiceName) == "" {
		return nil, domain.InvalidInput("service")
	}
	day, err := time.ParseInLocation(timezone.DateLayout, in.Date, policy.Location)
	if err != nil {
		return nil, domain.InvalidInput("date")
	}

	svc, err := uc.repo.Resolve(ctx, in.TenantID, strings.TrimSpace(in.ServiceName))
	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) {
			return nil, domain.ErrUnknownService
		}
		return nil, domain.StorageUnavailable("resolve service", err)
	}

	slots := []domain.TimeSlot{}

	now := uc.clock.Now().In(policy.Location)
	if !uc.dayBookable(policy, svc, day, now) {
		return slots, nil
	}

	barbers, err := uc.candidates(ctx, in, svc)
	if err != nil {
		return nil, err
	}

	earliest := now.Add(policy.LeadTimeFor(svc))

	for _, b := range barbers {
		free, err := uc.barberSlots(ctx, policy, svc, b.ID, day, earliest)
		if err != nil {
			return nil, err
		}
		slots = append(slots, free...)
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Start != slots[j].Start {
			return slots[i].Start < slots[j].Start
		}
		return slots[i].BarberID < slots[j].BarberID
	})

	return slots, nil
}

// dayBookable applies the day level rules: closed weekday, past day,
// advance horizon and the same-day premium cutoff.
func (uc *GetAvailability) dayBookable(
	policy domain.BusinessPolicy,
	svc domain.ServiceInfo,
	day time.Time,
	now time.Time,
) bool {
	if policy.IsClosed(day.Weekday()) {
		return false
	}

	today := timezone.StartOfDay(now)
	if day.Before(today) {
		return false
	}
	if policy.MaxAdvanceDays > 0 && day.After(today.AddDate(0, 0, policy.MaxAdvanceDays)) {
		return false
	}
	if svc.Premium && policy.SameDayCutoffHour > 0 &&
		timezone.SameDate(day, now) && now.Hour() >= policy.SameDayCutoffHour {
		return false
	}
	return true
}

func (uc *GetAvailability) candidates(
	ctx context.Context,
	in domain.AvailabilityInput,
	svc domain.ServiceInfo,
) ([]domain.BarberInfo, error) {

	if in.BarberID != nil {
		b, err := uc.repo.GetBarber(ctx, in.TenantID, *in.BarberID)
		if err != nil {
			if errors.Is(err, domain.ErrBarberNotFound) {
				return nil, domain.ErrBarberUnavailable
			}
			return nil, domain.StorageUnavailable("load barber", err)
		}
		if !b.Active || !b.Qualifies(svc.ID) {
			return nil, nil
		}
		return []domain.BarberInfo{b}, nil
	}

	all, err := uc.repo.ActiveBarbers(ctx, in.TenantID)
	if err != nil {
		return nil, domain.StorageUnavailable("list barbers", err)
	}

	out := make([]domain.BarberInfo, 0, len(all))
	for _, b := range all {
		if b.Qualifies(svc.ID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (uc *GetAvailability) barberSlots(
	ctx context.Context,
	policy domain.BusinessPolicy,
	svc domain.ServiceInfo,
	barberID uint,
	day time.Time,
	earliest time.Time,
) ([]domain.TimeSlot, error) {

	windows, err := uc.repo.WindowsFor(ctx, barberID, day.Weekday())
	if err != nil {
		return nil, domain.StorageUnavailable("load working hours", err)
	}
	if len(windows) == 0 {
		return nil, nil
	}

	probe := domain.Slot{BarberID: barberID, Start: day}
	lookup := domain.LookupRange(probe)

	existing, err := uc.repo.AppointmentsInRange(ctx, barberID, lookup.Start, lookup.End, domain.BlockingStatuses())
	if err != nil {
		return nil, domain.StorageUnavailable("load appointments", err)
	}

	business := policy.BusinessWindow(day)
	shopLunch, hasShopLunch := policy.LunchWindow(day)

	step := policy.SlotDuration
	if step <= 0 {
		step = 30 * time.Minute
	}

	var out []domain.TimeSlot
	for _, w := range windows {
		open := w.On(day, policy.Location)
		barberLunch, hasBarberLunch := w.LunchOn(day, policy.Location)

		for start := open.Start; ; start = start.Add(step) {
			span := domain.Interval{Start: start, End: start.Add(svc.Duration + svc.BufferAfter)}
			if span.End.After(open.End) {
				break
			}
			if start.Before(earliest) || !business.Contains(span) {
				continue
			}

			service := domain.Interval{Start: start, End: start.Add(svc.Duration)}
			if hasShopLunch && service.Overlaps(shopLunch) {
				continue
			}
			if hasBarberLunch && service.Overlaps(barberLunch) {
				continue
			}

			candidate := domain.Slot{
				BarberID:     barberID,
				Start:        start,
				Duration:     svc.Duration,
				BufferBefore: svc.BufferBefore,
				BufferAfter:  svc.BufferAfter,
			}
			if len(domain.Conflicts(candidate, existing)) > 0 {
				continue
			}

			out = append(out, domain.TimeSlot{
				BarberID: barberID,
				Start:    start.Format(timezone.ClockLayout),
				End:      candidate.End().Format(timezone.ClockLayout),
			})
		}
	}

	return out, nil
}
