package appointment

import (
	"testing"
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

var testDefaults = PolicyDefaults{
	Timezone:       "UTC",
	BusinessStart:  "09:00",
	BusinessEnd:    "18:00",
	MinLeadMinutes: 120,
	MaxAdvanceDays: 30,
	SlotMinutes:    30,
}

func TestPolicyFromBarbershopDefaults(t *testing.T) {
	p, err := PolicyFromBarbershop(&models.Barbershop{ID: 4}, testDefaults)
	if err != nil {
		t.Fatal(err)
	}

	if p.TenantID != 4 || p.BusinessStart != 9*60 || p.BusinessEnd != 18*60 {
		t.Fatalf("policy = %+v", p)
	}
	if p.MinLeadTime != 120*time.Minute || p.MaxAdvanceDays != 30 || p.SlotDuration != 30*time.Minute {
		t.Fatalf("policy = %+v", p)
	}
	if p.HasLunch || len(p.ClosedWeekdays) != 0 {
		t.Fatalf("policy = %+v", p)
	}
}

func TestPolicyFromBarbershopOverrides(t *testing.T) {
	shop := &models.Barbershop{
		ID:                1,
		Timezone:          "UTC",
		BusinessStart:     "08:30",
		BusinessEnd:       "20:00",
		LunchStart:        "12:00",
		LunchEnd:          "13:00",
		ClosedWeekdays:    "0, 1",
		MinAdvanceMinutes: 60,
		MaxAdvanceDays:    7,
		SlotMinutes:       15,
		SameDayCutoffHour: 14,
	}

	p, err := PolicyFromBarbershop(shop, testDefaults)
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasLunch || p.LunchStart != 12*60 || p.LunchEnd != 13*60 {
		t.Fatalf("lunch = %v %d-%d", p.HasLunch, p.LunchStart, p.LunchEnd)
	}
	if !p.IsClosed(time.Sunday) || !p.IsClosed(time.Monday) || p.IsClosed(time.Tuesday) {
		t.Fatalf("closed = %v", p.ClosedWeekdays)
	}
	if p.MinLeadTime != time.Hour || p.MaxAdvanceDays != 7 || p.SlotDuration != 15*time.Minute || p.SameDayCutoffHour != 14 {
		t.Fatalf("policy = %+v", p)
	}
}

func TestPolicyFromBarbershopRejectsBadHours(t *testing.T) {
	cases := []models.Barbershop{
		{BusinessStart: "18:00", BusinessEnd: "09:00"},
		{BusinessStart: "9h", BusinessEnd: "18:00"},
		{ClosedWeekdays: "7"},
	}
	for _, shop := range cases {
		shop := shop
		if _, err := PolicyFromBarbershop(&shop, testDefaults); err == nil {
			t.Fatalf("expected error for %+v", shop)
		}
	}
}

func TestLeadTimeForService(t *testing.T) {
	p := BusinessPolicy{MinLeadTime: 2 * time.Hour}
	if got := p.LeadTimeFor(ServiceInfo{}); got != 2*time.Hour {
		t.Fatalf("default lead = %v", got)
	}

	zero := time.Duration(0)
	if got := p.LeadTimeFor(ServiceInfo{MinLeadTime: &zero}); got != 0 {
		t.Fatalf("service override = %v", got)
	}
}
