package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/domain/shared"
)

// GormShippingMethodMappingRepository implements
// ShippingMethodMappingRepository using GORM
type GormShippingMethodMappingRepository struct {
	db *gorm.DB
}

// NewGormShippingMethodMappingRepository creates a new
// GormShippingMethodMappingRepository
func NewGormShippingMethodMappingRepository(db *gorm.DB) *GormShippingMethodMappingRepository {
	return &GormShippingMethodMappingRepository{db: db}
}

// FindByIDForTenant finds a mapping by ID within a tenant
func (r *GormShippingMethodMappingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*integration.ShippingMethodMapping, error) {
	var m integration.ShippingMethodMapping
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByExternalMethod finds the mapping for an external shipping method
// label within a tenant. Matching is exact.
func (r *GormShippingMethodMappingRepository) FindByExternalMethod(ctx context.Context, tenantID uuid.UUID, externalMethod string) (*integration.ShippingMethodMapping, error) {
	var m integration.ShippingMethodMapping
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_shipping_method = ?", tenantID, externalMethod).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByTenant lists all mappings of a tenant
func (r *GormShippingMethodMappingRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]integration.ShippingMethodMapping, error) {
	var list []integration.ShippingMethodMapping
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("external_shipping_method ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save creates or updates a mapping
func (r *GormShippingMethodMappingRepository) Save(ctx context.Context, m *integration.ShippingMethodMapping) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// DeleteForTenant deletes a mapping within a tenant
func (r *GormShippingMethodMappingRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&integration.ShippingMethodMapping{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ integration.ShippingMethodMappingRepository = (*GormShippingMethodMappingRepository)(nil)
