package appointment

import (
	"context"
	"testing"
	"time"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/lock"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

func TestCancelReleasesSlot(t *testing.T) {
	f := newBookingFixture(t, 1)
	barber := &f.barbers[0]
	book := f.useCase(lock.NewLocalLocker())
	ctx := context.Background()

	ap := f.book(t, book, f.request(barber, "10:00", "Barba"))

	cancel := NewCancelAppointment(f.store, f.store, nil, f.clock)
	got, err := cancel.Execute(ctx, f.shop.ID, barber.ID, ap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != string(domain.StatusCancelled) || got.CancelledAt == nil {
		t.Fatalf("appointment = %+v", got)
	}

	// the same slot books again
	f.book(t, book, f.request(barber, "10:00", "Barba"))

	if _, err := cancel.Execute(ctx, f.shop.ID, barber.ID, ap.ID); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("second cancel: %v", err)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	f := newBookingFixture(t, 1)
	barber := &f.barbers[0]
	ctx := context.Background()

	ap := f.book(t, f.useCase(lock.NewLocalLocker()), f.request(barber, "10:00", "Barba"))

	confirmed, err := NewConfirmAppointment(f.store, f.store, nil, f.clock).Execute(ctx, f.shop.ID, barber.ID, ap.ID)
	if err != nil || confirmed.Status != string(domain.StatusConfirmed) || confirmed.ConfirmedAt == nil {
		t.Fatalf("confirm: %+v %v", confirmed, err)
	}

	// start has not passed yet
	if _, err := NewMarkNoShow(f.store, f.store, nil, f.clock).Execute(ctx, f.shop.ID, barber.ID, ap.ID); !httperr.IsBusiness(err, "appointment_not_started") {
		t.Fatalf("early no-show: %v", err)
	}

	later := timezone.FixedClock{At: bookingNow.Add(4 * time.Hour)}
	done, err := NewCompleteAppointment(f.store, f.store, nil, later).Execute(ctx, f.shop.ID, barber.ID, ap.ID)
	if err != nil || done.Status != string(domain.StatusCompleted) {
		t.Fatalf("complete: %+v %v", done, err)
	}

	if _, err := NewCompleteAppointment(f.store, f.store, nil, later).Execute(ctx, f.shop.ID, barber.ID+1, ap.ID); !httperr.IsBusiness(err, "appointment_not_found") {
		t.Fatalf("other barber: %v", err)
	}
}

func TestListAppointments(t *testing.T) {
	f := newBookingFixture(t, 1)
	barber := &f.barbers[0]
	book := f.useCase(lock.NewLocalLocker())
	f.book(t, book, f.request(barber, "15:00", "Corte"))
	f.book(t, book, f.request(barber, "10:00", "Barba"))

	uc := NewListAppointments(f.store, f.store)
	day, err := uc.ByDate(context.Background(), barber.ID, f.shop.ID, bookingNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(day) != 2 || day[0].ServiceName != "Barba" || day[1].ClientName != "Joana" {
		t.Fatalf("agenda = %+v", day)
	}

	month, err := uc.ByMonth(context.Background(), barber.ID, f.shop.ID, 2024, 6)
	if err != nil || len(month) != 2 {
		t.Fatalf("month = %+v %v", month, err)
	}
	if _, err := uc.ByMonth(context.Background(), barber.ID, f.shop.ID, 2024, 13); !httperr.IsBusiness(err, "invalid_month") {
		t.Fatalf("month 13: %v", err)
	}
}
