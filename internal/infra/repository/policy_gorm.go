package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

// PolicyGormRepository reads the booking policy columns of a barbershop.
type PolicyGormRepository struct {
	db       *gorm.DB
	defaults domain.PolicyDefaults
}

func NewPolicyGormRepository(db *gorm.DB, defaults domain.PolicyDefaults) *PolicyGormRepository {
	return &PolicyGormRepository{db: db, defaults: defaults}
}

func (r *PolicyGormRepository) ForTenant(
	ctx context.Context,
	tenantID uint,
) (domain.BusinessPolicy, error) {

	var shop models.Barbershop
	err := r.db.WithContext(ctx).First(&shop, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.BusinessPolicy{}, domain.ErrTenantNotFound
	}
	if err != nil {
		return domain.BusinessPolicy{}, err
	}

	return domain.PolicyFromBarbershop(&shop, r.defaults)
}

var _ domain.PolicyConfig = (*PolicyGormRepository)(nil)
