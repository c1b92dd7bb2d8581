package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/httperr"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Service catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) Resolve(
	ctx context.Context,
	tenantID uint,
	name string,
) (domain.ServiceInfo, error) {

	var product models.BarberProduct
	err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND LOWER(name) = ? AND active = ?",
			tenantID, strings.ToLower(strings.TrimSpace(name)), true).
		Order("id ASC").
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ServiceInfo{}, domain.ErrServiceNotFound
	}
	if err != nil {
		return domain.ServiceInfo{}, err
	}

	return domain.ServiceFromProduct(&product), nil
}

// --------------------------------------------------
// Barbers
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarber(
	ctx context.Context,
	tenantID uint,
	barberID uint,
) (domain.BarberInfo, error) {

	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Services").
		Where("id = ? AND barbershop_id = ?", barberID, tenantID).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.BarberInfo{}, domain.ErrBarberNotFound
	}
	if err != nil {
		return domain.BarberInfo{}, err
	}

	return domain.BarberFromUser(&user), nil
}

func (r *AppointmentGormRepository) ActiveBarbers(
	ctx context.Context,
	tenantID uint,
) ([]domain.BarberInfo, error) {

	var users []models.User
	if err := r.db.WithContext(ctx).
		Preload("Services").
		Where("barbershop_id = ? AND active = ?", tenantID, true).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]domain.BarberInfo, 0, len(users))
	for i := range users {
		out = append(out, domain.BarberFromUser(&users[i]))
	}
	return out, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) WindowsFor(
	ctx context.Context,
	barberID uint,
	weekday time.Weekday,
) ([]domain.AvailabilityWindow, error) {

	var rows []models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND weekday = ?", barberID, int(weekday)).
		Order("start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return domain.WindowsFromWorkingHours(rows), nil
}

// --------------------------------------------------
// Appointments (read side)
// --------------------------------------------------

func (r *AppointmentGormRepository) AppointmentsInRange(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
	statuses []domain.Status,
) ([]models.Appointment, error) {
	return appointmentsInRange(r.db.WithContext(ctx), barberID, from, to, statuses)
}

func (r *AppointmentGormRepository) GetAppointmentForBarber(
	ctx context.Context,
	appointmentID uint,
	barberID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ? AND barber_id = ?", appointmentID, barberID).
		First(&ap).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(ap).Error
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("BarberProduct").
		Where(
			"barber_id = ? AND start_time >= ? AND start_time < ?",
			barberID,
			start,
			end,
		).
		Order("start_time ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) WithinTx(
	ctx context.Context,
	fn func(tx domain.AppointmentTx) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockBarber(ctx context.Context, barberID uint) error {
	var user models.User
	return t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", barberID).
		First(&user).Error
}

func (t *gormTx) AppointmentsInRangeForUpdate(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
	statuses []domain.Status,
) ([]models.Appointment, error) {
	return appointmentsInRange(
		t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		barberID, from, to, statuses,
	)
}

func (t *gormTx) ResolveClient(
	ctx context.Context,
	tenantID uint,
	ref domain.ClientRef,
) (*uint, error) {

	if ref.ClientID != nil {
		var client models.Client
		err := t.db.WithContext(ctx).
			Select("id").
			Where("id = ? AND barbershop_id = ?", *ref.ClientID, tenantID).
			First(&client).Error
		if err != nil {
			return nil, fmt.Errorf("client %d: %w", *ref.ClientID, err)
		}
		return &client.ID, nil
	}

	if ref.IsGuest() {
		return nil, nil
	}

	phone := strings.TrimSpace(ref.Phone)

	var client models.Client
	err := t.db.WithContext(ctx).
		Where("barbershop_id = ? AND phone = ?", tenantID, phone).
		First(&client).Error

	if err == nil {
		return &client.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = models.Client{
		BarbershopID: tenantID,
		Name:         strings.TrimSpace(ref.Name),
		Phone:        phone,
		Email:        strings.TrimSpace(ref.Email),
	}
	if client.Name == "" {
		client.Name = phone
	}

	if err := t.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	return &client.ID, nil
}

func (t *gormTx) Insert(ctx context.Context, ap *models.Appointment) error {
	err := t.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(ap).Error

	if httperr.IsExclusionConflict(err) {
		return fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
	}
	return err
}

func appointmentsInRange(
	q *gorm.DB,
	barberID uint,
	from time.Time,
	to time.Time,
	statuses []domain.Status,
) ([]models.Appointment, error) {

	q = q.Where(
		"barber_id = ? AND start_time >= ? AND start_time < ?",
		barberID, from, to,
	)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(statuses))
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
