package appointment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

// BusinessPolicy is the per-tenant snapshot the validator works against.
// Clock fields are minutes since local midnight.
type BusinessPolicy struct {
	TenantID uint
	Location *time.Location

	BusinessStart int
	BusinessEnd   int

	HasLunch   bool
	LunchStart int
	LunchEnd   int

	ClosedWeekdays []time.Weekday

	MinLeadTime    time.Duration
	MaxAdvanceDays int
	SlotDuration   time.Duration

	// Premium services cannot be booked for today once the local hour
	// reaches this value. Zero or less disables the rule.
	SameDayCutoffHour int
}

func (p BusinessPolicy) IsClosed(day time.Weekday) bool {
	for _, d := range p.ClosedWeekdays {
		if d == day {
			return true
		}
	}
	return false
}

// BusinessWindow is the open interval of the shop on day's date.
func (p BusinessPolicy) BusinessWindow(day time.Time) Interval {
	return Interval{
		Start: timezone.At(day, p.BusinessStart, p.Location),
		End:   timezone.At(day, p.BusinessEnd, p.Location),
	}
}

func (p BusinessPolicy) LunchWindow(day time.Time) (Interval, bool) {
	if !p.HasLunch {
		return Interval{}, false
	}
	return Interval{
		Start: timezone.At(day, p.LunchStart, p.Location),
		End:   timezone.At(day, p.LunchEnd, p.Location),
	}, true
}

// LeadTimeFor returns the notice a service needs.
func (p BusinessPolicy) LeadTimeFor(svc ServiceInfo) time.Duration {
	if svc.MinLeadTime != nil {
		return *svc.MinLeadTime
	}
	return p.MinLeadTime
}

// PolicyDefaults fill the columns a barbershop left empty.
type PolicyDefaults struct {
	Timezone       string
	BusinessStart  string
	BusinessEnd    string
	MinLeadMinutes int
	MaxAdvanceDays int
	SlotMinutes    int
}

// PolicyFromBarbershop builds the policy snapshot of one tenant.
func PolicyFromBarbershop(shop *models.Barbershop, d PolicyDefaults) (BusinessPolicy, error) {
	tz := shop.Timezone
	if tz == "" {
		tz = d.Timezone
	}

	p := BusinessPolicy{
		TenantID:          shop.ID,
		Location:          timezone.Location(tz),
		MinLeadTime:       time.Duration(firstPositive(shop.MinAdvanceMinutes, d.MinLeadMinutes)) * time.Minute,
		MaxAdvanceDays:    firstPositive(shop.MaxAdvanceDays, d.MaxAdvanceDays),
		SlotDuration:      time.Duration(firstPositive(shop.SlotMinutes, d.SlotMinutes, 30)) * time.Minute,
		SameDayCutoffHour: shop.SameDayCutoffHour,
	}

	var err error
	if p.BusinessStart, err = timezone.ParseClock(firstNonEmpty(shop.BusinessStart, d.BusinessStart, "09:00")); err != nil {
		return BusinessPolicy{}, fmt.Errorf("business start: %w", err)
	}
	if p.BusinessEnd, err = timezone.ParseClock(firstNonEmpty(shop.BusinessEnd, d.BusinessEnd, "18:00")); err != nil {
		return BusinessPolicy{}, fmt.Errorf("business end: %w", err)
	}
	if p.BusinessEnd <= p.BusinessStart {
		return BusinessPolicy{}, fmt.Errorf("business hours %s-%s are empty", shop.BusinessStart, shop.BusinessEnd)
	}

	if shop.LunchStart != "" && shop.LunchEnd != "" {
		if p.LunchStart, err = timezone.ParseClock(shop.LunchStart); err != nil {
			return BusinessPolicy{}, fmt.Errorf("lunch start: %w", err)
		}
		if p.LunchEnd, err = timezone.ParseClock(shop.LunchEnd); err != nil {
			return BusinessPolicy{}, fmt.Errorf("lunch end: %w", err)
		}
		p.HasLunch = p.LunchEnd > p.LunchStart
	}

	if p.ClosedWeekdays, err = ParseWeekdays(shop.ClosedWeekdays); err != nil {
		return BusinessPolicy{}, err
	}

	return p, nil
}

// ParseWeekdays reads a comma separated list of weekday numbers (0=Sunday).
func ParseWeekdays(raw string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
