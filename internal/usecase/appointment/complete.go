package appointment

import (
	"context"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

type CompleteAppointment struct {
	transition
}

func NewCompleteAppointment(
	repo domain.Repository,
	policies domain.PolicyConfig,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *CompleteAppointment {
	return &CompleteAppointment{transition: newTransition(repo, policies, audit, clock)}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
	appointmentID uint,
) (*models.Appointment, error) {
	return uc.apply(ctx, barbershopID, barberID, appointmentID, "appointment_completed", domain.Complete)
}
