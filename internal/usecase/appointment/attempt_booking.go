package appointment

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BruksfildServices01/bookedbarber/internal/audit"
	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/lock"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

// AttemptState is the progress of one booking attempt. Only the terminal
// states are visible outside the use case.
type AttemptState string

const (
	StateReceived        AttemptState = "received"
	StateValidated       AttemptState = "validated"
	StateLockAcquired    AttemptState = "lock_acquired"
	StateConflictChecked AttemptState = "conflict_checked"
	StateCommitted       AttemptState = "committed"
	StateRejected        AttemptState = "rejected"
)

// ======================================================
// USE CASE
// ======================================================

// AttemptBooking validates a request, re-checks the barber's calendar under
// lock and inserts the appointment in one transaction.
type AttemptBooking struct {
	repo      domain.Repository
	policies  domain.PolicyConfig
	validator *domain.Validator
	locker    lock.Locker
	audit     *audit.Dispatcher
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewAttemptBooking(
	repo domain.Repository,
	policies domain.PolicyConfig,
	validator *domain.Validator,
	locker lock.Locker,
	audit *audit.Dispatcher,
	logger *slog.Logger,
) *AttemptBooking {
	return &AttemptBooking{
		repo:      repo,
		policies:  policies,
		validator: validator,
		locker:    locker,
		audit:     audit,
		logger:    logger,
		tracer:    otel.Tracer("bookedbarber/booking"),
	}
}

// BookingResult is a committed booking plus any soft warnings raised during
// validation.
type BookingResult struct {
	Appointment *models.Appointment
	Warnings    []string
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *AttemptBooking) Execute(
	ctx context.Context,
	in domain.BookingRequest,
	requestID string,
) (*BookingResult, error) {

	ctx, span := uc.tracer.Start(ctx, "booking.attempt",
		trace.WithAttributes(
			attribute.Int64("barbershop.id", int64(in.TenantID)),
			attribute.String("booking.date", in.Date),
			attribute.String("booking.time", in.Time),
			attribute.String("booking.service", in.ServiceName),
		),
	)
	defer span.End()

	state := StateReceived

	res, err := uc.execute(ctx, in, &state)
	if err != nil {
		uc.reject(ctx, span, in, requestID, state, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("booking.state", string(StateCommitted)),
		attribute.Int64("barber.id", int64(res.Appointment.BarberID)),
	)

	uc.logger.InfoContext(ctx, "booking committed",
		"state", StateCommitted,
		"request_id", requestID,
		"barbershop_id", in.TenantID,
		"barber_id", res.Appointment.BarberID,
		"appointment_id", res.Appointment.ID,
		"start", res.Appointment.StartTime,
	)

	uc.audit.Dispatch(audit.Event{
		BarbershopID: in.TenantID,
		UserID:       &res.Appointment.BarberID,
		Action:       "appointment_created",
		Entity:       "appointment",
		EntityID:     &res.Appointment.ID,
		RequestID:    requestID,
		Metadata: map[string]any{
			"start":    res.Appointment.StartTime,
			"end":      res.Appointment.EndTime,
			"service":  in.ServiceName,
			"warnings": res.Warnings,
		},
	})

	return res, nil
}

func (uc *AttemptBooking) execute(
	ctx context.Context,
	in domain.BookingRequest,
	state *AttemptState,
) (*BookingResult, error) {

	// --------------------------------------------------
	// 1. Policy + constraint validation
	// --------------------------------------------------
	policy, err := uc.policies.ForTenant(ctx, in.TenantID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return nil, domain.InvalidInput("barbershop")
		}
		return nil, domain.StorageUnavailable("load policy", err)
	}

	vb, err := uc.validator.Validate(ctx, in, policy)
	if err != nil {
		return nil, err
	}
	*state = StateValidated

	// --------------------------------------------------
	// 2. Candidate barbers (one when requested explicitly)
	// --------------------------------------------------
	barbers, err := uc.validator.EligibleBarbers(ctx, vb)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. First barber with a free calendar wins
	// --------------------------------------------------
	var conflicts []domain.Interval
	for _, barberID := range barbers {
		ap, err := uc.bookBarber(ctx, vb, barberID, state)
		if err == nil {
			return &BookingResult{Appointment: ap, Warnings: vb.WarningsFor(barberID)}, nil
		}

		be, ok := domain.AsBookingError(err)
		if !ok || be.Kind != domain.KindSlotConflict {
			return nil, err
		}
		conflicts = append(conflicts, be.ConflictingTimes...)
	}

	return nil, domain.SlotConflict(conflicts...)
}

// bookBarber runs lock -> locked re-read -> conflict check -> insert for a
// single barber.
func (uc *AttemptBooking) bookBarber(
	ctx context.Context,
	vb *domain.ValidatedBooking,
	barberID uint,
	state *AttemptState,
) (*models.Appointment, error) {

	slot := vb.SlotFor(barberID)
	lookup := domain.LookupRange(slot)

	var created *models.Appointment

	err := uc.locker.WithBarberLock(ctx, barberID, func(lockCtx context.Context) error {
		return uc.repo.WithinTx(lockCtx, func(tx domain.AppointmentTx) error {
			if err := tx.LockBarber(lockCtx, barberID); err != nil {
				return domain.StorageUnavailable("lock barber row", err)
			}
			*state = StateLockAcquired

			existing, err := tx.AppointmentsInRangeForUpdate(
				lockCtx,
				barberID,
				lookup.Start,
				lookup.End,
				domain.BlockingStatuses(),
			)
			if err != nil {
				return domain.StorageUnavailable("load appointments", err)
			}

			if err := domain.CheckSlot(slot, existing); err != nil {
				return err
			}
			*state = StateConflictChecked

			clientID, err := tx.ResolveClient(lockCtx, vb.Request.TenantID, vb.Request.Client)
			if err != nil {
				return domain.StorageUnavailable("resolve client", err)
			}

			ap := domain.NewAppointment(*vb, barberID, clientID)
			if err := tx.Insert(lockCtx, ap); err != nil {
				if errors.Is(err, domain.ErrConstraintViolation) {
					return domain.SlotConflict(slot.Effective())
				}
				return domain.StorageUnavailable("insert appointment", err)
			}

			created = ap
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return nil, domain.StorageUnavailable("acquire barber lock", err)
		}
		if _, ok := domain.AsBookingError(err); ok || errors.Is(err, domain.ErrStorageUnavailable) {
			return nil, err
		}
		// commit failures surface here
		if errors.Is(err, domain.ErrConstraintViolation) {
			return nil, domain.SlotConflict(slot.Effective())
		}
		return nil, domain.StorageUnavailable("commit booking", err)
	}

	return created, nil
}

func (uc *AttemptBooking) reject(
	ctx context.Context,
	span trace.Span,
	in domain.BookingRequest,
	requestID string,
	reached AttemptState,
	err error,
) {
	kind := domain.KindOf(err)

	span.SetAttributes(
		attribute.String("booking.state", string(StateRejected)),
		attribute.String("booking.reached", string(reached)),
		attribute.String("booking.error_kind", string(kind)),
	)

	if kind == "" {
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking failed")
		uc.logger.ErrorContext(ctx, "booking failed",
			"state", StateRejected,
			"reached", reached,
			"request_id", requestID,
			"barbershop_id", in.TenantID,
			"err", err,
		)
		return
	}

	uc.logger.WarnContext(ctx, "booking rejected",
		"state", StateRejected,
		"reached", reached,
		"request_id", requestID,
		"barbershop_id", in.TenantID,
		"kind", kind,
		"reason", err.Error(),
	)

	if kind == domain.KindSlotConflict {
		uc.audit.Dispatch(audit.Event{
			BarbershopID: in.TenantID,
			UserID:       in.BarberID,
			Action:       "appointment_conflict",
			Entity:       "appointment",
			RequestID:    requestID,
			Metadata: map[string]any{
				"date":    in.Date,
				"time":    in.Time,
				"service": in.ServiceName,
			},
		})
	}
}
