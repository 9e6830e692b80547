package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/domain/shared"
)

// GormIntegrationRepository implements integration.Repository using GORM
type GormIntegrationRepository struct {
	db *gorm.DB
}

// NewGormIntegrationRepository creates a new GormIntegrationRepository
func NewGormIntegrationRepository(db *gorm.DB) *GormIntegrationRepository {
	return &GormIntegrationRepository{db: db}
}

// FindByID finds an integration by ID across tenants
func (r *GormIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	var i integration.Integration
	if err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

// FindByIDForTenant finds an integration by ID within a tenant
func (r *GormIntegrationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*integration.Integration, error) {
	var i integration.Integration
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&i).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

// FindByShopForTenant finds a tenant's integration for a shop regardless of
// active state. Used by the OAuth callback to reconnect a previously
// disconnected shop instead of creating a second row.
func (r *GormIntegrationRepository) FindByShopForTenant(ctx context.Context, tenantID uuid.UUID, platform integration.Platform, shopDomain string) (*integration.Integration, error) {
	var i integration.Integration
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform = ? AND shop_domain = ?", tenantID, platform, shopDomain).
		First(&i).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

// FindActiveByShop finds the single active integration for a shop across
// all tenants. This is the webhook routing lookup; the partial unique index
// on (platform, shop_domain) WHERE is_active guarantees at most one row.
func (r *GormIntegrationRepository) FindActiveByShop(ctx context.Context, platform integration.Platform, shopDomain string) (*integration.Integration, error) {
	var i integration.Integration
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND shop_domain = ? AND is_active = ?", platform, shopDomain, true).
		First(&i).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

// ListByTenant lists a tenant's integrations for a platform
func (r *GormIntegrationRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, platform integration.Platform) ([]integration.Integration, error) {
	var list []integration.Integration
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform = ?", tenantID, platform).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save creates an integration
func (r *GormIntegrationRepository) Save(ctx context.Context, i *integration.Integration) error {
	return r.db.WithContext(ctx).Create(i).Error
}

// Update persists changes to an existing integration
func (r *GormIntegrationRepository) Update(ctx context.Context, i *integration.Integration) error {
	return r.db.WithContext(ctx).Save(i).Error
}

// DeactivateByShop deactivates every integration for a shop regardless of
// tenant. Driven by the platform's app uninstall notification, which
// arrives without tenant context.
func (r *GormIntegrationRepository) DeactivateByShop(ctx context.Context, platform integration.Platform, shopDomain string) error {
	return r.db.WithContext(ctx).
		Model(&integration.Integration{}).
		Where("platform = ? AND shop_domain = ?", platform, shopDomain).
		Update("is_active", false).Error
}

var _ integration.Repository = (*GormIntegrationRepository)(nil)
