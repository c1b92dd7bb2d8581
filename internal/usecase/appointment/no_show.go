package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

// MarkNoShow records that the client did not turn up. Only appointments
// whose start has passed can be marked.
type MarkNoShow struct {
	transition
}

func NewMarkNoShow(
	repo domain.Repository,
	policies domain.PolicyConfig,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *MarkNoShow {
	return &MarkNoShow{transition: newTransition(repo, policies, audit, clock)}
}

func (uc *MarkNoShow) Execute(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
	appointmentID uint,
) (*models.Appointment, error) {
	return uc.apply(ctx, barbershopID, barberID, appointmentID, "appointment_no_show",
		func(ap *models.Appointment, now time.Time) error {
			if now.Before(ap.StartTime) {
				return httperr.ErrBusiness("appointment_not_started")
			}
			return domain.MarkNoShow(ap)
		},
	)
}
