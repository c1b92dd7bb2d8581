package appointment

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Validator applies the temporal and business constraints of a booking
// request. It only reads from its collaborators.
type Validator struct {
	catalog      ServiceCatalog
	barbers      BarberDirectory
	availability AvailabilityStore
	clock        timezone.Clock
}

func NewValidator(
	catalog ServiceCatalog,
	barbers BarberDirectory,
	availability AvailabilityStore,
	clock timezone.Clock,
) *Validator {
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	return &Validator{
		catalog:      catalog,
		barbers:      barbers,
		availability: availability,
		clock:        clock,
	}
}

// Validate runs the checks in order and returns the first violation.
// Collaborator failures come back wrapped in ErrStorageUnavailable.
func (v *Validator) Validate(
	ctx context.Context,
	req BookingRequest,
	policy BusinessPolicy,
) (*ValidatedBooking, error) {

	// 1. field presence and format
	start, err := parseRequestedStart(req, policy.Location)
	if err != nil {
		return nil, err
	}

	// 2. service
	svc, err := v.catalog.Resolve(ctx, req.TenantID, strings.TrimSpace(req.ServiceName))
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, ErrUnknownService
		}
		return nil, StorageUnavailable("resolve service", err)
	}
	if svc.Duration <= 0 {
		return nil, ErrUnknownService
	}

	vb := &ValidatedBooking{
		Request: req,
		Policy:  policy,
		Service: svc,
		Start:   start,
	}

	now := v.clock.Now().In(policy.Location)

	// 3. not in the past
	if start.Before(now) {
		return nil, ErrPastDate
	}

	// 4. minimum notice
	lead := policy.LeadTimeFor(svc)
	if start.Before(now.Add(lead)) {
		return nil, InsufficientLeadTime(int(lead / time.Minute))
	}

	// 5. advance window
	if policy.MaxAdvanceDays > 0 {
		limit := timezone.StartOfDay(now).AddDate(0, 0, policy.MaxAdvanceDays)
		if timezone.StartOfDay(start).After(limit) {
			return nil, TooFarInAdvance(policy.MaxAdvanceDays)
		}
	}

	// 6. same-day cutoff, premium services only
	if svc.Premium && policy.SameDayCutoffHour > 0 &&
		timezone.SameDate(start, now) && now.Hour() >= policy.SameDayCutoffHour {
		return nil, ErrSameDayRestricted
	}

	// 7. business hours
	span := vb.serviceSpan()
	if policy.IsClosed(start.Weekday()) {
		return nil, OutsideBusinessHours()
	}
	window := policy.BusinessWindow(start)
	if !window.Contains(span) {
		return nil, OutsideBusinessHours(window)
	}
	if lunch, ok := policy.LunchWindow(start); ok && lunch.Overlaps(Interval{Start: start, End: start.Add(svc.Duration)}) {
		vb.warn(WarningLunchBreak)
	}

	// 8. requested barber
	if req.BarberID != nil {
		barber, err := v.barbers.GetBarber(ctx, req.TenantID, *req.BarberID)
		if err != nil {
			if errors.Is(err, ErrBarberNotFound) {
				return nil, ErrBarberUnavailable
			}
			return nil, StorageUnavailable("load barber", err)
		}
		warnings, err := v.barberFits(ctx, barber, vb)
		if err != nil {
			return nil, err
		}
		vb.warnBarber(barber.ID, warnings)
	}

	return vb, nil
}

// EligibleBarbers returns, in ascending id order, the active barbers that
// perform the service and work during the requested span.
func (v *Validator) EligibleBarbers(ctx context.Context, vb *ValidatedBooking) ([]uint, error) {
	if vb.Request.BarberID != nil {
		return []uint{*vb.Request.BarberID}, nil
	}

	barbers, err := v.barbers.ActiveBarbers(ctx, vb.Request.TenantID)
	if err != nil {
		return nil, StorageUnavailable("list barbers", err)
	}

	var ids []uint
	for _, b := range barbers {
		warnings, err := v.barberFits(ctx, b, vb)
		if err == nil {
			ids = append(ids, b.ID)
			vb.warnBarber(b.ID, warnings)
			continue
		}
		if errors.Is(err, ErrStorageUnavailable) {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return nil, ErrBarberUnavailable
	}
	return ids, nil
}

// barberFits checks b against the booking and returns the warnings that
// apply only when b takes it.
func (v *Validator) barberFits(ctx context.Context, b BarberInfo, vb *ValidatedBooking) ([]string, error) {
	if !b.Active || !b.Qualifies(vb.Service.ID) {
		return nil, ErrBarberUnavailable
	}

	loc := vb.Policy.Location
	windows, err := v.availability.WindowsFor(ctx, b.ID, vb.Start.Weekday())
	if err != nil {
		return nil, StorageUnavailable("load working hours", err)
	}

	w, ok := WindowContaining(windows, vb.Start, loc, vb.serviceSpan())
	if !ok {
		return nil, OutsideBusinessHours(windowsOn(windows, vb.Start, loc)...)
	}
	if lunch, ok := w.LunchOn(vb.Start, loc); ok && lunch.Overlaps(Interval{Start: vb.Start, End: vb.Start.Add(vb.Service.Duration)}) {
		return []string{WarningLunchBreak}, nil
	}
	return nil, nil
}

// parseRequestedStart checks date, time and service presence and returns
// the requested instant in the business location.
func parseRequestedStart(req BookingRequest, business *time.Location) (time.Time, error) {
	date := strings.TrimSpace(req.Date)
	clock := strings.TrimSpace(req.Time)

	if date == "" {
		return time.Time{}, InvalidInput("date")
	}
	if clock == "" || !clockPattern.MatchString(clock) {
		return time.Time{}, InvalidInput("time")
	}
	if strings.TrimSpace(req.ServiceName) == "" {
		return time.Time{}, InvalidInput("service")
	}

	loc := business
	if tz := strings.TrimSpace(req.UserTimezone); tz != "" {
		userLoc, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, InvalidInput("user_timezone")
		}
		loc = userLoc
	}

	day, err := time.ParseInLocation(timezone.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, InvalidInput("date")
	}

	hh, mm, _ := strings.Cut(clock, ":")
	hour, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	return start.In(business), nil
}
