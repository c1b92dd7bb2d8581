package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

func (r *AppointmentGormRepository) TenantBySlug(
	ctx context.Context,
	slug string,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&shop).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *AppointmentGormRepository) ListServices(
	ctx context.Context,
	tenantID uint,
) ([]models.BarberProduct, error) {

	var products []models.BarberProduct
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND active = ?", tenantID, true).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

var _ domain.TenantDirectory = (*AppointmentGormRepository)(nil)
