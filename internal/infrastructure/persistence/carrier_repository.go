package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/logida/backend/internal/domain/partner"
	"github.com/logida/backend/internal/domain/shared"
)

// GormCarrierRepository implements CarrierRepository using GORM
type GormCarrierRepository struct {
	db *gorm.DB
}

// NewGormCarrierRepository creates a new GormCarrierRepository
func NewGormCarrierRepository(db *gorm.DB) *GormCarrierRepository {
	return &GormCarrierRepository{db: db}
}

// FindByIDForTenant finds a carrier by ID within a tenant
func (r *GormCarrierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Carrier, error) {
	var carrier partner.Carrier
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&carrier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &carrier, nil
}

// FindServiceByIDForTenant finds a carrier service by ID within a tenant
func (r *GormCarrierRepository) FindServiceByIDForTenant(ctx context.Context, tenantID, serviceID uuid.UUID) (*partner.CarrierService, error) {
	var service partner.CarrierService
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, serviceID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}

// Save creates or updates a carrier
func (r *GormCarrierRepository) Save(ctx context.Context, carrier *partner.Carrier) error {
	return r.db.WithContext(ctx).Save(carrier).Error
}

// SaveService creates or updates a carrier service
func (r *GormCarrierRepository) SaveService(ctx context.Context, service *partner.CarrierService) error {
	return r.db.WithContext(ctx).Save(service).Error
}

var _ partner.CarrierRepository = (*GormCarrierRepository)(nil)
