package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
	"github.com/BruksfildServices01/bookedbarber/internal/timezone"
)

// transition loads a barber's appointment, applies a status change and
// stores it. The caller's action names the audit event.
type transition struct {
	repo     domain.Repository
	policies domain.PolicyConfig
	audit    *audit.Dispatcher
	clock    timezone.Clock
}

func newTransition(
	repo domain.Repository,
	policies domain.PolicyConfig,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) transition {
	if clock == nil {
		clock = timezone.SystemClock{}
	}
	return transition{repo: repo, policies: policies, audit: audit, clock: clock}
}

func (t transition) apply(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
	appointmentID uint,
	action string,
	change func(ap *models.Appointment, now time.Time) error,
) (*models.Appointment, error) {

	policy, err := t.policies.ForTenant(ctx, barbershopID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return nil, httperr.ErrBusiness("barbershop_not_found")
		}
		return nil, domain.StorageUnavailable("load policy", err)
	}

	ap, err := t.repo.GetAppointmentForBarber(ctx, appointmentID, barberID)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		return nil, domain.StorageUnavailable("load appointment", err)
	}
	if ap.BarbershopID != barbershopID {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	previous := ap.Status
	now := t.clock.Now().In(policy.Location)
	if err := change(ap, now); err != nil {
		return nil, err
	}

	if err := t.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, domain.StorageUnavailable("update appointment", err)
	}

	t.audit.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       &barberID,
		Action:       action,
		Entity:       "appointment",
		EntityID:     &ap.ID,
		Metadata: map[string]any{
			"from": previous,
			"to":   ap.Status,
		},
	})

	return ap, nil
}
