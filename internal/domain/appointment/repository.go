package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

// AvailabilityStore holds the barbers' recurring working windows.
type AvailabilityStore interface {
	WindowsFor(ctx context.Context, barberID uint, weekday time.Weekday) ([]AvailabilityWindow, error)
}

// PolicyConfig resolves a tenant's policy. Returns ErrTenantNotFound for
// unknown tenants.
type PolicyConfig interface {
	ForTenant(ctx context.Context, tenantID uint) (BusinessPolicy, error)
}

// ServiceCatalog resolves a service by name within a tenant. Returns
// ErrServiceNotFound for unknown or inactive services.
type ServiceCatalog interface {
	Resolve(ctx context.Context, tenantID uint, name string) (ServiceInfo, error)
}

// BarberDirectory lists the barbers of a tenant.
type BarberDirectory interface {
	// GetBarber returns ErrBarberNotFound when the barber does not belong
	// to the tenant.
	GetBarber(ctx context.Context, tenantID, barberID uint) (BarberInfo, error)

	// ActiveBarbers is ordered by ascending barber id.
	ActiveBarbers(ctx context.Context, tenantID uint) ([]BarberInfo, error)
}

// AppointmentTx is the write side of one booking transaction.
type AppointmentTx interface {
	// LockBarber serialises writers of the same barber until the
	// transaction ends.
	LockBarber(ctx context.Context, barberID uint) error

	// AppointmentsInRangeForUpdate re-reads the barber's appointments
	// with write intent.
	AppointmentsInRangeForUpdate(ctx context.Context, barberID uint, from, to time.Time, statuses []Status) ([]models.Appointment, error)

	// ResolveClient returns the client id for ref, creating the client on
	// first contact. Guests resolve to nil.
	ResolveClient(ctx context.Context, tenantID uint, ref ClientRef) (*uint, error)

	// Insert returns an error wrapping ErrConstraintViolation when the
	// store's own non-overlap rule rejects the row.
	Insert(ctx context.Context, ap *models.Appointment) error
}

// AppointmentStore is the transactional appointment table.
type AppointmentStore interface {
	AppointmentsInRange(ctx context.Context, barberID uint, from, to time.Time, statuses []Status) ([]models.Appointment, error)

	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx AppointmentTx) error) error

	GetAppointmentForBarber(ctx context.Context, appointmentID, barberID uint) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
	ListAppointmentsForPeriod(ctx context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error)
}

// Repository bundles every collaborator the appointment use cases need.
type Repository interface {
	AvailabilityStore
	ServiceCatalog
	BarberDirectory
	AppointmentStore
}

// TenantDirectory backs the public booking pages.
type TenantDirectory interface {
	// TenantBySlug returns ErrTenantNotFound for unknown slugs.
	TenantBySlug(ctx context.Context, slug string) (*models.Barbershop, error)

	// ListServices returns the active catalog ordered by name.
	ListServices(ctx context.Context, tenantID uint) ([]models.BarberProduct, error)
}
