package appointment

import (
	"context"
	"errors"
	"testing"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/lock"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

func starts(slots []domain.TimeSlot, barberID uint) []string {
	var out []string
	for _, s := range slots {
		if s.BarberID == barberID {
			out = append(out, s.Start)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func TestGetAvailabilityHonoursLeadAndBookings(t *testing.T) {
	f := newBookingFixture(t, 1)
	barber := &f.barbers[0]
	f.book(t, f.useCase(lock.NewLocalLocker()), f.request(barber, "13:00", "Platinado"))

	uc := NewGetAvailability(f.store, f.store, f.clock)
	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		TenantID:    f.shop.ID,
		BarberID:    &barber.ID,
		ServiceName: "Corte",
		Date:        "2024-06-03",
	})
	if err != nil {
		t.Fatal(err)
	}

	got := starts(slots, barber.ID)
	if len(got) == 0 || got[0] != "10:00" {
		t.Fatalf("first slot = %v, want 10:00 (now 08:00 + 2h)", got)
	}

	// Platinado 13:00 blocks 12:45-14:45
	for _, blocked := range []string{"12:30", "13:00", "14:00", "14:30"} {
		if contains(got, blocked) {
			t.Fatalf("%s offered over an existing booking: %v", blocked, got)
		}
	}
	for _, free := range []string{"12:00", "15:00", "17:30"} {
		if !contains(got, free) {
			t.Fatalf("%s missing from %v", free, got)
		}
	}
	if contains(got, "18:00") {
		t.Fatal("slot past closing")
	}

	// every offered slot must book
	book := f.useCase(lock.NewLocalLocker())
	for _, s := range []string{"12:00", "15:00"} {
		f.book(t, book, f.request(barber, s, "Corte"))
	}
}

func TestGetAvailabilityAnyBarberAndErrors(t *testing.T) {
	f := newBookingFixture(t, 2)
	uc := NewGetAvailability(f.store, f.store, f.clock)
	ctx := context.Background()

	slots, err := uc.Execute(ctx, domain.AvailabilityInput{TenantID: f.shop.ID, ServiceName: "Barba", Date: "2024-06-04"})
	if err != nil {
		t.Fatal(err)
	}
	if len(starts(slots, f.barbers[0].ID)) == 0 || len(starts(slots, f.barbers[1].ID)) == 0 {
		t.Fatalf("slots = %+v, want both barbers", slots)
	}

	// Sunday: no working hours
	slots, err = uc.Execute(ctx, domain.AvailabilityInput{TenantID: f.shop.ID, ServiceName: "Barba", Date: "2024-06-09"})
	if err != nil || len(slots) != 0 {
		t.Fatalf("sunday: %v %v", slots, err)
	}

	// beyond the advance window
	slots, err = uc.Execute(ctx, domain.AvailabilityInput{TenantID: f.shop.ID, ServiceName: "Barba", Date: "2024-08-01"})
	if err != nil || len(slots) != 0 {
		t.Fatalf("far future: %v %v", slots, err)
	}

	if _, err := uc.Execute(ctx, domain.AvailabilityInput{TenantID: f.shop.ID, ServiceName: "Tattoo", Date: "2024-06-04"}); !errors.Is(err, domain.ErrUnknownService) {
		t.Fatalf("unknown service: %v", err)
	}
	if _, err := uc.Execute(ctx, domain.AvailabilityInput{TenantID: f.shop.ID, ServiceName: "Barba", Date: "04/06/2024"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("bad date: %v", err)
	}
}

func TestGetAvailabilitySkipsLunch(t *testing.T) {
	f := newBookingFixture(t, 0)
	b := f.store.AddBarber(models.User{BarbershopID: f.shop.ID, Name: "Lia", Active: true})
	f.store.AddWorkingHours(models.WorkingHours{
		BarberID: b.ID, Weekday: 2, StartTime: "09:00", EndTime: "13:00",
		LunchStart: "11:00", LunchEnd: "12:00", Active: true,
	})
	f.store.AddWorkingHours(models.WorkingHours{BarberID: b.ID, Weekday: 2, StartTime: "15:00", EndTime: "17:00", Active: true})

	uc := NewGetAvailability(f.store, f.store, f.clock)
	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{TenantID: f.shop.ID, BarberID: &b.ID, ServiceName: "Corte", Date: "2024-06-04"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"09:00", "09:30", "10:00", "10:30", "12:00", "12:30", "15:00", "15:30", "16:00", "16:30"}
	got := starts(slots, b.ID)
	if len(got) != len(want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slots = %v, want %v", got, want)
		}
	}
}
