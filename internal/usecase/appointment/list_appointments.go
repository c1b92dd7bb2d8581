package appointment

import (
	"context"
	"errors"
	"time"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/dto"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

// ListAppointments is the barber agenda, by day or by month, in the
// barbershop's time zone.
type ListAppointments struct {
	repo     domain.Repository
	policies domain.PolicyConfig
}

func NewListAppointments(
	repo domain.Repository,
	policies domain.PolicyConfig,
) *ListAppointments {
	return &ListAppointments{
		repo:     repo,
		policies: policies,
	}
}

func (uc *ListAppointments) ByDate(
	ctx context.Context,
	barberID uint,
	barbershopID uint,
	date time.Time,
) ([]dto.AppointmentListDTO, error) {

	loc, err := uc.location(ctx, barbershopID)
	if err != nil {
		return nil, err
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	return uc.list(ctx, barberID, start, end)
}

func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	barberID uint,
	barbershopID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 {
		return nil, httperr.ErrBusiness("invalid_month")
	}

	loc, err := uc.location(ctx, barbershopID)
	if err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	return uc.list(ctx, barberID, start, end)
}

func (uc *ListAppointments) location(ctx context.Context, barbershopID uint) (*time.Location, error) {
	policy, err := uc.policies.ForTenant(ctx, barbershopID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return nil, httperr.ErrBusiness("barbershop_not_found")
		}
		return nil, domain.StorageUnavailable("load policy", err)
	}
	return policy.Location, nil
}

func (uc *ListAppointments) list(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]dto.AppointmentListDTO, error) {

	appointments, err := uc.repo.ListAppointmentsForPeriod(ctx, barberID, start, end)
	if err != nil {
		return nil, domain.StorageUnavailable("list appointments", err)
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for i := range appointments {
		out = append(out, toListDTO(&appointments[i], start.Location()))
	}
	return out, nil
}

func toListDTO(ap *models.Appointment, loc *time.Location) dto.AppointmentListDTO {
	client := ap.Client.Name
	if ap.ClientID == nil {
		client = ""
	}
	return dto.AppointmentListDTO{
		ID:             ap.ID,
		StartTime:      ap.StartTime.In(loc),
		EndTime:        ap.EndTime.In(loc),
		EffectiveStart: ap.EffectiveStart.In(loc),
		EffectiveEnd:   ap.EffectiveEnd.In(loc),
		Status:         ap.Status,
		ClientName:     client,
		Guest:          ap.ClientID == nil,
		ServiceName:    ap.BarberProduct.Name,
		Notes:          ap.Notes,
	}
}
